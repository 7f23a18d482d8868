package agents

import (
	"log/slog"
	"math"

	"github.com/talgya/limsim/internal/entropy"
	"github.com/talgya/limsim/internal/sim"
)

// Network dimensions the training side and this runtime agree on.
const (
	obsDim    = 14
	hiddenDim = 64
)

// RNN runs a recurrent policy network trained offline. When no checkpoint
// can be loaded the agent falls back to seeded random weights so runs stay
// reproducible end to end.
type RNN struct {
	firmID int
	cfg    sim.Config
	net    *rnnPolicy
}

func NewRNN(firmID int, cfg sim.Config, checkpointPath string) *RNN {
	var ck checkpoint
	loaded := false
	if checkpointPath != "" {
		c, err := loadCheckpoint(checkpointPath)
		if err != nil {
			slog.Warn("rnn checkpoint unusable, using random weights",
				"firm_id", firmID, "path", checkpointPath, "err", err)
		} else {
			ck = c
			loaded = true
		}
	}
	if !loaded {
		rng := entropy.Derive(cfg.Seed, rnnInitOffset+int64(firmID))
		ck = randomCheckpoint(rng, obsDim, hiddenDim)
	}
	return &RNN{firmID: firmID, cfg: cfg, net: newRNNPolicy(ck)}
}

func (a *RNN) FirmID() int { return a.firmID }

func (a *RNN) Act(obs sim.Observation) sim.Action {
	priceRaw, production, procurement := a.net.step(featurize(obs, a.cfg.Horizon))
	// The price head emits a logit mapped onto the legal band; the other
	// heads are already nonnegative.
	price := a.cfg.PriceMin + (a.cfg.PriceMax-a.cfg.PriceMin)*sigmoid(priceRaw)
	return sim.Action{Price: price, ProductionTarget: production, ProcurementBid: procurement}
}

// Reset zeroes the hidden state so episodes do not bleed into each other.
func (a *RNN) Reset() {
	a.net.resetHidden()
}

// featurize flattens an observation into the network's input vector. The
// order is part of the checkpoint contract.
func featurize(obs sim.Observation, horizon int) []float64 {
	return []float64{
		obs.OwnInventory,
		obs.OwnLastPrice,
		obs.OwnLastProduction,
		obs.OwnLastSales,
		obs.MarketPriceIndex,
		obs.TradeFillRatio,
		obs.SupplySignal,
		obs.DemandSignal,
		float64(obs.TimeStep),
		obs.Tariff,
		obs.RouteCapacity,
		obs.StorageCap,
		obs.Elasticity,
		float64(obs.TimeStep) / float64(horizon),
	}
}

// rnnPolicy is the stateful forward pass: encoder, GRU cell, three heads.
type rnnPolicy struct {
	ck     checkpoint
	hidden []float64
}

func newRNNPolicy(ck checkpoint) *rnnPolicy {
	return &rnnPolicy{ck: ck, hidden: make([]float64, ck.HiddenDim)}
}

func (p *rnnPolicy) resetHidden() {
	for i := range p.hidden {
		p.hidden[i] = 0
	}
}

// step advances the hidden state and returns the raw head outputs: the
// price logit plus softplus-activated production and procurement.
func (p *rnnPolicy) step(features []float64) (priceRaw, production, procurement float64) {
	x := p.ck.Encoder.forward(features)
	p.hidden = gruStep(p.ck.GRU, x, p.hidden)
	priceRaw = p.ck.PriceHead.forward(p.hidden)[0]
	production = softplus(p.ck.ProductionHead.forward(p.hidden)[0])
	procurement = softplus(p.ck.ProcurementHead.forward(p.hidden)[0])
	return priceRaw, production, procurement
}

func (d denseParams) forward(x []float64) []float64 {
	out := make([]float64, len(d.W))
	for i, row := range d.W {
		sum := d.B[i]
		for j, w := range row {
			sum += w * x[j]
		}
		out[i] = sum
	}
	return out
}

func (m mlpParams) forward(x []float64) []float64 {
	h := m.Hidden.forward(x)
	for i, v := range h {
		if v < 0 {
			h[i] = 0
		}
	}
	return m.Out.forward(h)
}

// gruStep advances one GRU cell:
//
//	r  = sigmoid(Wr x + bri + Ur h + brh)
//	z  = sigmoid(Wz x + bzi + Uz h + bzh)
//	n  = tanh(Wn x + bni + r*(Un h + bnh))
//	h' = (1-z)*n + z*h
func gruStep(g gruParams, x, h []float64) []float64 {
	rx, rh := matVec(g.WR, x), matVec(g.UR, h)
	zx, zh := matVec(g.WZ, x), matVec(g.UZ, h)
	nx, nh := matVec(g.WN, x), matVec(g.UN, h)

	next := make([]float64, len(h))
	for i := range next {
		r := sigmoid(rx[i] + g.BRI[i] + rh[i] + g.BRH[i])
		z := sigmoid(zx[i] + g.BZI[i] + zh[i] + g.BZH[i])
		n := math.Tanh(nx[i] + g.BNI[i] + r*(nh[i]+g.BNH[i]))
		next[i] = (1-z)*n + z*h[i]
	}
	return next
}

func matVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		var sum float64
		for j, w := range row {
			sum += w * v[j]
		}
		out[i] = sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softplus with a linear tail to avoid overflowing exp.
func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}
