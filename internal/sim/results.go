package sim

import (
	"fmt"

	"github.com/talgya/limsim/internal/metrics"
)

// MarketSeries holds the aggregate per-period series of a run.
type MarketSeries struct {
	PriceIndex    []float64 `json:"price_index"`
	Demand        []float64 `json:"demand"`
	SupplyTrue    []float64 `json:"supply_true"`
	RouteCapacity []float64 `json:"route_capacity"`
	Tariff        []float64 `json:"tariff"`
	FillRatio     []float64 `json:"fill_ratio"`
}

// RunMetrics is the headline scoring of a run plus full breakdowns.
type RunMetrics struct {
	Stability          float64                    `json:"stability"`
	StabilityBreakdown metrics.StabilityBreakdown `json:"stability_breakdown"`
	Welfare            float64                    `json:"welfare"`
	WelfareBreakdown   metrics.WelfareBreakdown   `json:"welfare_breakdown"`
	CartelLikelihood   float64                    `json:"cartel_likelihood"`
	AdaptSpeed         float64                    `json:"adapt_speed"`
}

// CartelReport pairs the rolling per-period cartel score with the run-level
// signals behind it.
type CartelReport struct {
	ScoreT  []float64               `json:"score_t"`
	Signals metrics.CartelBreakdown `json:"signals"`
}

// ConfigEcho repeats the scenario parameters a result was produced under,
// so a results file is self-describing.
type ConfigEcho struct {
	NFirms  int         `json:"n_firms"`
	Horizon int         `json:"horizon"`
	Shock   ShockConfig `json:"shock"`
	Rules   RulesConfig `json:"rules"`
}

// Results is the full record of a run: per-firm series keyed firm_1..n,
// market aggregates, metrics, and the scenario echo.
type Results struct {
	T          []int                `json:"t"`
	Prices     map[string][]float64 `json:"prices"`
	Production map[string][]float64 `json:"production"`
	Sales      map[string][]float64 `json:"sales"`
	Inventory  map[string][]float64 `json:"inventory"`
	Market     MarketSeries         `json:"market"`
	Metrics    RunMetrics           `json:"metrics"`
	Cartel     CartelReport         `json:"cartel"`
	Config     ConfigEcho           `json:"config"`
}

// Results scores the history accumulated so far. Calling it before the
// horizon is reached simply scores the shorter run; the metrics degrade
// to their defaults on an empty history rather than failing.
func (e *Env) Results() *Results {
	n := e.cfg.NFirms
	periods := e.hist.periods()

	t := make([]int, periods)
	for i := range t {
		t[i] = i
	}

	prices := firmSeries(e.hist.prices, n)
	production := firmSeries(e.hist.production, n)
	sales := firmSeries(e.hist.sales, n)
	inventory := firmSeries(e.hist.inventory, n)

	stability := metrics.Stability(prices, production, e.hist.demand)
	welfare := metrics.Welfare(sales, prices, e.hist.supplyTrue)
	cartel := metrics.CartelLikelihood(prices, production, e.capacities, e.hist.supplyTrue)
	cartelSeries := metrics.CartelSeries(prices, production, e.capacities)
	adaptSpeed := metrics.AdaptationSpeed(production, e.cfg.Shock.Start, e.cfg.Shock.Duration)

	return &Results{
		T:          t,
		Prices:     firmMap(prices),
		Production: firmMap(production),
		Sales:      firmMap(sales),
		Inventory:  firmMap(inventory),
		Market: MarketSeries{
			PriceIndex:    e.hist.priceIndex,
			Demand:        e.hist.demand,
			SupplyTrue:    e.hist.supplyTrue,
			RouteCapacity: e.hist.routeCapacity,
			Tariff:        e.hist.tariff,
			FillRatio:     e.hist.fillRatio,
		},
		Metrics: RunMetrics{
			Stability:          stability.Overall,
			StabilityBreakdown: stability,
			Welfare:            welfare.WelfareScore,
			WelfareBreakdown:   welfare,
			CartelLikelihood:   cartel.CartelLikelihood,
			AdaptSpeed:         adaptSpeed,
		},
		Cartel: CartelReport{
			ScoreT:  cartelSeries,
			Signals: cartel,
		},
		Config: ConfigEcho{
			NFirms:  n,
			Horizon: e.cfg.Horizon,
			Shock:   e.cfg.Shock,
			Rules:   e.cfg.Rules,
		},
	}
}

// firmMap keys firm-major rows as firm_1..firm_n for JSON output.
func firmMap(rows [][]float64) map[string][]float64 {
	out := make(map[string][]float64, len(rows))
	for i, row := range rows {
		out[fmt.Sprintf("firm_%d", i+1)] = row
	}
	return out
}
