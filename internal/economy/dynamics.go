// Package economy implements the market mechanics of a simulation run:
// demand formation, price aggregation, allocation under scarcity, and the
// supply shock trajectory. Everything here is pure; state lives in the
// simulation engine.
package economy

import "math"

// demandSensitivity sharpens the price-based split of demand across firms.
const demandSensitivity = 2.5

// Dynamics holds the market primitives for one scenario.
type Dynamics struct {
	BaseDemand float64
	BasePrice  float64
	BaseSupply float64
	Elasticity float64
}

// Demand computes aggregate demand at the given price index.
//
//	D = D0 * (P/P0)^(-elasticity) * shock
//
// An index at or below zero (no sales at all last clearing) is floored at
// epsilon so the curve stays finite.
func (d Dynamics) Demand(priceIndex, demandShock float64) float64 {
	ratio := math.Max(priceIndex, 1e-6) / d.BasePrice
	demand := d.BaseDemand * math.Pow(ratio, -d.Elasticity) * demandShock
	return math.Max(0, demand)
}

// TrueSupply returns the raw material supply at period t under the shock.
func (d Dynamics) TrueSupply(t int, shock Shock) float64 {
	return shock.SupplyAt(d.BaseSupply, t)
}

// PriceIndex computes the quantity-weighted average of firm prices. Firms
// that sold nothing contribute nothing to the index.
func PriceIndex(prices, quantities []float64) float64 {
	totalQty := 1e-6
	for _, q := range quantities {
		totalQty += q
	}
	var index float64
	for i, p := range prices {
		index += quantities[i] / totalQty * p
	}
	return index
}

// AllocateDemand splits total demand across firms. Cheaper firms draw a
// larger share via a logit rule, capped at each firm's feasible output.
// Unmet demand is redistributed once, proportionally to spare capacity;
// whatever remains unmet after that single pass is dropped.
func AllocateDemand(prices []float64, totalDemand float64, maxSupply []float64) []float64 {
	shares := logitShares(prices, demandSensitivity)

	realized := make([]float64, len(prices))
	var totalRealized float64
	for i := range realized {
		realized[i] = math.Min(shares[i]*totalDemand, maxSupply[i])
		totalRealized += realized[i]
	}

	if totalRealized < totalDemand {
		unmet := totalDemand - totalRealized
		var totalSpare float64
		for i := range realized {
			totalSpare += maxSupply[i] - realized[i]
		}
		if totalSpare > 0 {
			for i := range realized {
				spare := maxSupply[i] - realized[i]
				realized[i] = math.Min(realized[i]+spare/totalSpare*unmet, maxSupply[i])
			}
		}
	}

	return realized
}

// logitShares converts prices into market shares via a numerically stable
// softmax over inverted prices. Lower price means higher share.
func logitShares(prices []float64, sensitivity float64) []float64 {
	scores := make([]float64, len(prices))
	maxScore := math.Inf(-1)
	for i, p := range prices {
		scores[i] = sensitivity / (p + 1e-6)
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	var sum float64
	for i := range scores {
		scores[i] = math.Exp(scores[i] - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}
