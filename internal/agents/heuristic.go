package agents

import "github.com/talgya/limsim/internal/sim"

// Heuristic is the calibrated rule-based policy. It marks prices up under
// low inventory, scarce supply, and tariffs, produces toward a target
// inventory level, and procures what the production plan needs plus a
// safety stock.
//
// Recognized params, with defaults: target_inventory (0.6),
// price_sensitivity (0.15), collusion_bias (0), safety_stock (1.2).
type Heuristic struct {
	firmID int
	cfg    sim.Config
	memory *obsMemory

	targetInventoryRatio float64
	priceSensitivity     float64
	collusionBias        float64
	safetyStock          float64
}

func NewHeuristic(firmID int, cfg sim.Config, params map[string]float64) *Heuristic {
	return &Heuristic{
		firmID:               firmID,
		cfg:                  cfg,
		memory:               newObsMemory(cfg.ObsHistoryLen),
		targetInventoryRatio: paramOr(params, "target_inventory", 0.6),
		priceSensitivity:     paramOr(params, "price_sensitivity", 0.15),
		collusionBias:        paramOr(params, "collusion_bias", 0.0),
		safetyStock:          paramOr(params, "safety_stock", 1.2),
	}
}

func (h *Heuristic) FirmID() int { return h.firmID }

func (h *Heuristic) Act(obs sim.Observation) sim.Action {
	h.memory.remember(obs)

	// Fair share of base supply, the reference scale for one firm.
	share := h.cfg.BaseSupply / float64(h.cfg.NFirms)

	// Price: start from the market index, mark up when inventory runs
	// low and down when it piles up, then layer on scarcity and tariff
	// pass-through.
	adj := 1.0
	invRatio := obs.OwnInventory / (share * 0.3)
	if invRatio < 0.3 {
		adj = 1.0 + h.priceSensitivity
	} else if invRatio > 1.5 {
		adj = 1.0 - h.priceSensitivity*0.5
	}
	supplyRatio := obs.SupplySignal / h.cfg.BaseSupply
	if supplyRatio < 0.8 {
		adj *= 1.0 + (0.8-supplyRatio)*0.5
	}
	adj *= 1.0 + obs.Tariff*0.5
	if h.collusionBias > 0 {
		adj *= 1.0 + h.collusionBias*0.1
	}
	price := obs.MarketPriceIndex * adj
	if price < h.cfg.PriceMin {
		price = h.cfg.PriceMin
	}
	if price > h.cfg.PriceMax {
		price = h.cfg.PriceMax
	}

	// Production: serve the demand share, correcting toward the target
	// inventory. Excess stock is worked off more gently than deficits
	// are rebuilt.
	targetInv := share * h.targetInventoryRatio
	invGap := targetInv - obs.OwnInventory
	production := obs.DemandSignal / float64(h.cfg.NFirms)
	if invGap > 0 {
		production += invGap * 0.5
	} else {
		production += invGap * 0.3
	}
	if obs.TradeFillRatio < 0.7 {
		production *= 0.8
	}
	if production < 0 {
		production = 0
	}

	// Procurement: cover the plan plus safety stock, bidding harder when
	// supply looks tight or the route is constrained.
	need := production + share*0.2*h.safetyStock - obs.OwnInventory
	if supplyRatio < 0.7 {
		need *= 1.3
	}
	if obs.RouteCapacity < 1.0 {
		need *= 1.2
	}
	if need < 0 {
		need = 0
	}

	return sim.Action{Price: price, ProductionTarget: production, ProcurementBid: need}
}

func (h *Heuristic) Reset() {
	h.memory.clear()
}
