// Package metrics scores completed simulation histories: market stability,
// a welfare proxy, cartel-behavior likelihood, and post-shock adaptation
// speed. History matrices are firm-major, m[firm][period].
package metrics

import "math"

// scarcityPenaltyWeight converts lost supply units into welfare loss.
const scarcityPenaltyWeight = 10.0

// StabilityBreakdown carries the overall stability score and its three
// weighted components. Overall is clamped to [0, 1]; components are
// reported unclamped so callers can see which one dragged the score.
type StabilityBreakdown struct {
	Overall             float64 `json:"overall"`
	PriceComponent      float64 `json:"price_component"`
	ProductionComponent float64 `json:"production_component"`
	DemandComponent     float64 `json:"demand_component"`
}

// Stability scores a run on price volatility, production drops, and demand
// fulfillment, weighted 0.35/0.35/0.30.
func Stability(prices, production [][]float64, demand []float64) StabilityBreakdown {
	priceStability := math.Max(0, 1-priceVolatility(flatten(prices)))

	totalProduction := columnTotals(production)
	prodStability := 1.0
	if len(totalProduction) > 1 {
		var drops float64
		for t := 1; t < len(totalProduction); t++ {
			if change := totalProduction[t] - totalProduction[t-1]; change < 0 {
				drops += change
			}
		}
		maxDrop := mean(totalProduction) * float64(len(totalProduction)-1)
		prodStability = math.Max(0, 1+drops/(math.Abs(maxDrop)+1e-6))
	}

	// Sales are approximated by production here; the history does not
	// distinguish inventory carried over as sellable stock.
	demandStability := 1.0
	if len(demand) > 0 {
		var sum float64
		for t, d := range demand {
			var sold float64
			if t < len(totalProduction) {
				sold = totalProduction[t]
			}
			sum += math.Min(sold, d) / (d + 1e-6)
		}
		demandStability = sum / float64(len(demand))
	}

	overall := 0.35*priceStability + 0.35*prodStability + 0.30*demandStability
	return StabilityBreakdown{
		Overall:             clamp01(overall),
		PriceComponent:      priceStability,
		ProductionComponent: prodStability,
		DemandComponent:     demandStability,
	}
}

// WelfareBreakdown decomposes the welfare proxy into realized sales value
// and the penalty charged for supply lost to the shock.
type WelfareBreakdown struct {
	WelfareScore       float64 `json:"welfare_score"`
	TotalValue         float64 `json:"total_value"`
	ScarcityPenalty    float64 `json:"scarcity_penalty"`
	AvgConsumerSurplus float64 `json:"avg_consumer_surplus"`
}

// Welfare approximates consumer welfare as total sales value minus a
// scarcity penalty proportional to supply lost versus the first period.
func Welfare(sales, prices [][]float64, supply []float64) WelfareBreakdown {
	var totalValue float64
	var samples int
	for f := range sales {
		for t := range sales[f] {
			totalValue += sales[f][t] * prices[f][t]
			samples++
		}
	}

	baseSupply := 1.0
	if len(supply) > 0 {
		baseSupply = supply[0]
	}
	var scarcity float64
	for _, s := range supply {
		scarcity += math.Max(0, baseSupply-s)
	}
	penalty := scarcity * scarcityPenaltyWeight

	var avgSurplus float64
	if samples > 0 {
		avgSurplus = totalValue / float64(samples)
	}
	return WelfareBreakdown{
		WelfareScore:       totalValue - penalty,
		TotalValue:         totalValue,
		ScarcityPenalty:    penalty,
		AvgConsumerSurplus: avgSurplus,
	}
}

// CartelBreakdown carries the cartel likelihood score and its three
// signals: cross-firm price correlation, synchronized production
// throttling, and scarcity-period price markup.
type CartelBreakdown struct {
	CartelLikelihood       float64 `json:"cartel_likelihood"`
	PriceCorrelationSignal float64 `json:"price_correlation_signal"`
	ThrottlingSignal       float64 `json:"throttling_signal"`
	MarginSignal           float64 `json:"margin_signal"`
}

// CartelLikelihood scores collusion signals over a full run, weighted
// 0.40 correlation, 0.35 throttling, 0.25 margin.
func CartelLikelihood(prices, production [][]float64, capacities, supply []float64) CartelBreakdown {
	nFirms := len(prices)
	var periods int
	if nFirms > 0 {
		periods = len(prices[0])
	}

	var priceSignal float64
	if nFirms >= 2 && periods >= 6 {
		priceSignal = math.Max(0, meanPairwiseCorrelation(prices, 6))
	}

	throttleSignal := synchronizedThrottling(production, capacities, 4)

	// The margin signal needs enough history to separate scarcity
	// periods from normal ones.
	var marginSignal float64
	if periods >= 10 && len(supply) > 0 {
		baseSupply := supply[0]
		var scarceSum, normalSum float64
		var scarceN, normalN int
		for t := 0; t < periods && t < len(supply); t++ {
			scarce := supply[t] < baseSupply*0.8
			for f := 0; f < nFirms; f++ {
				if scarce {
					scarceSum += prices[f][t]
					scarceN++
				} else {
					normalSum += prices[f][t]
					normalN++
				}
			}
		}
		if scarceN > 0 {
			scarceAvg := scarceSum / float64(scarceN)
			normalAvg := scarceAvg
			if normalN > 0 {
				normalAvg = normalSum / float64(normalN)
			}
			markup := scarceAvg/(normalAvg+1e-6) - 1.0
			marginSignal = math.Min(1.0, math.Max(0.0, markup/0.5))
		}
	}

	score := 0.40*priceSignal + 0.35*throttleSignal + 0.25*marginSignal
	return CartelBreakdown{
		CartelLikelihood:       clamp01(score),
		PriceCorrelationSignal: priceSignal,
		ThrottlingSignal:       throttleSignal,
		MarginSignal:           marginSignal,
	}
}

// CartelSeries computes a rolling per-period cartel score over a trailing
// six-period window. Periods before the window fills stay zero.
func CartelSeries(prices, production [][]float64, capacities []float64) []float64 {
	nFirms := len(prices)
	var periods int
	if nFirms > 0 {
		periods = len(prices[0])
	}
	scores := make([]float64, periods)

	const window = 6
	for t := window; t < periods; t++ {
		var corr float64
		if nFirms >= 2 {
			priceWindow := make([][]float64, nFirms)
			for f := range priceWindow {
				priceWindow[f] = prices[f][t-window : t]
			}
			corr = meanPairwiseCorrelation(priceWindow, window)
		}

		prodWindow := make([][]float64, nFirms)
		for f := range prodWindow {
			prodWindow[f] = production[f][t-window : t]
		}
		throttle := synchronizedThrottling(prodWindow, capacities, 4)

		scores[t] = 0.6*math.Max(0, corr) + 0.4*throttle
	}
	return scores
}

// meanPairwiseCorrelation averages the trailing-window Pearson coefficient
// over every firm pair.
func meanPairwiseCorrelation(series [][]float64, window int) float64 {
	var sum float64
	var count int
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			sum += correlation(series[i], series[j], window)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// AdaptationSpeed measures periods until total production recovers to 90%
// of its pre-shock baseline, counted from the end of the shock. Runs that
// end before the shock does report the periods remaining after its start;
// runs that never recover report the full post-shock length.
func AdaptationSpeed(production [][]float64, shockStart, shockDuration int) float64 {
	var periods int
	if len(production) > 0 {
		periods = len(production[0])
	}
	shockEnd := shockStart + shockDuration
	if shockEnd >= periods {
		return float64(periods - shockStart)
	}

	totalProd := columnTotals(production)
	baseline := totalProd[0]
	if shockStart > 0 {
		baseline = mean(totalProd[:shockStart])
	}

	postShock := totalProd[shockEnd:]
	threshold := baseline * 0.9
	for i, prod := range postShock {
		if prod >= threshold {
			return float64(i + 1)
		}
	}
	return float64(len(postShock))
}
