package sim

// periodRecord captures everything one step produced.
type periodRecord struct {
	prices      []float64
	production  []float64
	sales       []float64
	inventory   []float64
	procurement []float64
	supplyTrue  float64
	demand      float64
	priceIndex  float64
	fillRatio   float64
}

// history accumulates per-period records, period-major. Firm-major views
// for scoring come from firmSeries.
type history struct {
	prices        [][]float64
	production    [][]float64
	sales         [][]float64
	inventory     [][]float64
	procurement   [][]float64
	supplyTrue    []float64
	demand        []float64
	priceIndex    []float64
	fillRatio     []float64
	routeCapacity []float64
	tariff        []float64
}

func (h *history) record(rec periodRecord, routeCapacity, tariff float64) {
	h.prices = append(h.prices, rec.prices)
	h.production = append(h.production, rec.production)
	h.sales = append(h.sales, rec.sales)
	h.inventory = append(h.inventory, rec.inventory)
	h.procurement = append(h.procurement, rec.procurement)
	h.supplyTrue = append(h.supplyTrue, rec.supplyTrue)
	h.demand = append(h.demand, rec.demand)
	h.priceIndex = append(h.priceIndex, rec.priceIndex)
	h.fillRatio = append(h.fillRatio, rec.fillRatio)
	h.routeCapacity = append(h.routeCapacity, routeCapacity)
	h.tariff = append(h.tariff, tariff)
}

func (h *history) periods() int {
	return len(h.prices)
}

// firmSeries transposes a period-major matrix into one row per firm.
func firmSeries(periodMajor [][]float64, nFirms int) [][]float64 {
	out := make([][]float64, nFirms)
	for f := range out {
		out[f] = make([]float64, len(periodMajor))
		for t, row := range periodMajor {
			out[f][t] = row[f]
		}
	}
	return out
}
