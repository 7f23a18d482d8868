package economy

import "math"

// AllocateProcurement fills firm bids from the available supply, throttled
// by the shipping route multiplier. When total bids exceed the effective
// supply every firm is filled pro-rata. Returns per-firm allocations and
// the fill ratio in [0, 1].
func AllocateProcurement(bids []float64, availableSupply, routeCapacity float64) ([]float64, float64) {
	var totalBid float64
	for _, b := range bids {
		totalBid += b
	}
	if totalBid < 1e-6 {
		return make([]float64, len(bids)), 1.0
	}

	effective := math.Min(availableSupply, availableSupply*routeCapacity)
	if totalBid <= effective {
		out := make([]float64, len(bids))
		copy(out, bids)
		return out, 1.0
	}

	fill := effective / totalBid
	out := make([]float64, len(bids))
	for i, b := range bids {
		out[i] = b * fill
	}
	return out, fill
}

// FeasibleProduction caps desired output by the raw material each firm has
// on hand. inputPerUnit converts stock into output units.
func FeasibleProduction(desired, available []float64, inputPerUnit float64) []float64 {
	out := make([]float64, len(desired))
	for i := range desired {
		out[i] = math.Min(desired[i], available[i]/inputPerUnit)
	}
	return out
}

// UpdateInventories applies one period of stock flow and clamps each firm
// to [0, storage capacity].
func UpdateInventories(inventory, inflow, usage, storageCaps []float64) []float64 {
	out := make([]float64, len(inventory))
	for i := range inventory {
		out[i] = clamp(inventory[i]+inflow[i]-usage[i], 0, storageCaps[i])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
