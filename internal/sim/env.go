package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/limsim/internal/economy"
	"github.com/talgya/limsim/internal/entropy"
)

// Observation is one firm's partial view of the market. True supply is
// never exposed; firms see a noisy signal plus lagged aggregates and the
// published policy regime.
type Observation struct {
	OwnInventory      float64 `json:"own_inventory"`
	OwnLastPrice      float64 `json:"own_last_price"`
	OwnLastProduction float64 `json:"own_last_production"`
	OwnLastSales      float64 `json:"own_last_sales"`
	MarketPriceIndex  float64 `json:"market_price_index"`
	TradeFillRatio    float64 `json:"trade_fill_ratio"`
	SupplySignal      float64 `json:"supply_signal"`
	DemandSignal      float64 `json:"demand_signal"`
	TimeStep          int     `json:"time_step"`
	Tariff            float64 `json:"tariff"`
	RouteCapacity     float64 `json:"route_capacity"`
	StorageCap        float64 `json:"storage_cap"`
	Elasticity        float64 `json:"elasticity"`
}

// Action is one firm's decision for a period. Values outside the legal
// ranges are clamped, never rejected.
type Action struct {
	Price            float64 `json:"price"`
	ProductionTarget float64 `json:"production_target"`
	ProcurementBid   float64 `json:"procurement_bid"`
}

// StepInfo summarizes what one step resolved to. Step is 1-based, the
// count of completed periods.
type StepInfo struct {
	Step        int       `json:"step"`
	Prices      []float64 `json:"prices"`
	Production  []float64 `json:"production"`
	Sales       []float64 `json:"sales"`
	MarketPrice float64   `json:"market_price"`
	Demand      float64   `json:"demand"`
	Supply      float64   `json:"supply"`
	FillRatio   float64   `json:"fill_ratio"`
}

// Env is the simulation environment. A single goroutine drives it through
// Reset and Step; run independent Envs for parallel scenarios.
type Env struct {
	cfg   Config
	dyn   economy.Dynamics
	shock economy.Shock
	rng   *entropy.Source

	capacities  []float64
	storageCaps []float64

	step            int
	inventories     []float64
	lastPrices      []float64
	lastProduction  []float64
	lastSales       []float64
	lastProcurement []float64
	lastFillRatio   float64

	hist  history
	ready bool
}

// NewEnv validates the config and builds an environment. Call Reset before
// the first Step.
func NewEnv(cfg Config) (*Env, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Env{
		cfg: cfg,
		dyn: economy.Dynamics{
			BaseDemand: cfg.BaseDemand,
			BasePrice:  cfg.BasePrice,
			BaseSupply: cfg.BaseSupply,
			Elasticity: cfg.Rules.DemandElasticity,
		},
		shock: economy.Shock{
			Magnitude:    cfg.Shock.Magnitude,
			Duration:     cfg.Shock.Duration,
			Start:        cfg.Shock.Start,
			RecoveryRate: cfg.Shock.RecoveryRate,
		},
		capacities:  make([]float64, cfg.NFirms),
		storageCaps: make([]float64, cfg.NFirms),
	}
	for i, f := range cfg.Firms {
		e.capacities[i] = f.Capacity
		// The policy multiplier scales every firm's own storage bound.
		e.storageCaps[i] = f.StorageCapacity * cfg.Rules.StorageCap
	}
	return e, nil
}

// Config returns the normalized configuration the environment runs with.
func (e *Env) Config() Config {
	return e.cfg
}

// Done reports whether the run has reached its horizon.
func (e *Env) Done() bool {
	return e.step >= e.cfg.Horizon
}

// Reset restores initial state, reseeds the PRNG, and returns the first
// round of observations. Resetting mid-run discards the partial history.
func (e *Env) Reset() []Observation {
	e.rng = entropy.NewSource(e.cfg.Seed)
	e.step = 0

	n := e.cfg.NFirms
	e.inventories = make([]float64, n)
	for i, f := range e.cfg.Firms {
		e.inventories[i] = f.InitialInventory
	}
	e.lastPrices = make([]float64, n)
	for i := range e.lastPrices {
		e.lastPrices[i] = e.cfg.BasePrice
	}
	e.lastProduction = make([]float64, n)
	e.lastSales = make([]float64, n)
	e.lastProcurement = make([]float64, n)
	e.lastFillRatio = 1.0

	e.hist = history{}
	e.ready = true
	return e.observations()
}

// Step advances the market by one period. Action values are clamped to
// their legal ranges; only structural misuse returns an error.
func (e *Env) Step(actions []Action) ([]Observation, StepInfo, bool, error) {
	if !e.ready {
		return nil, StepInfo{}, false, errors.New("environment must be reset before stepping")
	}
	if e.Done() {
		return nil, StepInfo{}, true, errors.New("simulation already ran to its horizon")
	}
	if len(actions) != e.cfg.NFirms {
		return nil, StepInfo{}, false, fmt.Errorf("got %d actions for %d firms", len(actions), e.cfg.NFirms)
	}

	n := e.cfg.NFirms
	prices := make([]float64, n)
	targets := make([]float64, n)
	bids := make([]float64, n)
	for i, a := range actions {
		prices[i] = clampf(a.Price, e.cfg.PriceMin, e.cfg.PriceMax)
		targets[i] = clampf(a.ProductionTarget, 0, e.capacities[i])
		bids[i] = math.Max(0, a.ProcurementBid)
	}

	// Procurement: bids are filled from the shocked supply through the
	// route constraint, and the tariff skims each allocation.
	trueSupply := e.dyn.TrueSupply(e.step, e.shock)
	allocated, fillRatio := economy.AllocateProcurement(bids, trueSupply, e.cfg.Rules.RouteCapacity)
	netInput := make([]float64, n)
	for i, a := range allocated {
		netInput[i] = math.Max(0, a*(1-e.cfg.Rules.Tariff))
	}

	// Production: one unit of output consumes one unit of lithium, so
	// output is capped by inventory plus this period's net inflow.
	available := make([]float64, n)
	for i := range available {
		available[i] = e.inventories[i] + netInput[i]
	}
	production := economy.FeasibleProduction(targets, available, 1.0)

	// Market clearing at the quantity-weighted price index.
	priceIndex := economy.PriceIndex(prices, production)
	totalDemand := e.dyn.Demand(priceIndex, 1.0)
	sales := economy.AllocateDemand(prices, totalDemand, production)

	// State update. Production consumes lithium 1:1.
	e.inventories = economy.UpdateInventories(e.inventories, netInput, production, e.storageCaps)
	e.lastPrices = prices
	e.lastProduction = production
	e.lastSales = sales
	e.lastProcurement = allocated
	e.lastFillRatio = fillRatio

	e.hist.record(periodRecord{
		prices:      prices,
		production:  production,
		sales:       sales,
		inventory:   e.inventories,
		procurement: allocated,
		supplyTrue:  trueSupply,
		demand:      totalDemand,
		priceIndex:  priceIndex,
		fillRatio:   fillRatio,
	}, e.cfg.Rules.RouteCapacity, e.cfg.Rules.Tariff)

	e.step++
	done := e.Done()

	info := StepInfo{
		Step:        e.step,
		Prices:      prices,
		Production:  production,
		Sales:       sales,
		MarketPrice: priceIndex,
		Demand:      totalDemand,
		Supply:      trueSupply,
		FillRatio:   fillRatio,
	}
	return e.observations(), info, done, nil
}

// observations builds the partial view for every firm. The supply signal
// is drawn once per round, so all firms read the same noisy estimate.
func (e *Env) observations() []Observation {
	priceIndex := e.cfg.BasePrice
	if n := len(e.hist.priceIndex); n > 0 {
		priceIndex = e.hist.priceIndex[n-1]
	}

	trueSupply := e.dyn.TrueSupply(e.step, e.shock)
	supplySignal := math.Max(0, e.rng.Normal(trueSupply, e.cfg.SupplyNoiseStd*trueSupply))

	demandSignal := e.cfg.BaseDemand
	if n := len(e.hist.demand); n > 0 {
		demandSignal = e.hist.demand[n-1]
	}

	obs := make([]Observation, e.cfg.NFirms)
	for i := range obs {
		obs[i] = Observation{
			OwnInventory:      e.inventories[i],
			OwnLastPrice:      e.lastPrices[i],
			OwnLastProduction: e.lastProduction[i],
			OwnLastSales:      e.lastSales[i],
			MarketPriceIndex:  priceIndex,
			TradeFillRatio:    e.lastFillRatio,
			SupplySignal:      supplySignal,
			DemandSignal:      demandSignal,
			TimeStep:          e.step,
			Tariff:            e.cfg.Rules.Tariff,
			RouteCapacity:     e.cfg.Rules.RouteCapacity,
			StorageCap:        e.cfg.Rules.StorageCap,
			Elasticity:        e.cfg.Rules.DemandElasticity,
		}
	}
	return obs
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
