package agents

import (
	"github.com/talgya/limsim/internal/entropy"
	"github.com/talgya/limsim/internal/sim"
)

// Random samples uniformly over the action space. It is the lower bound
// for policy comparisons.
type Random struct {
	firmID int
	cfg    sim.Config
	memory *obsMemory
	rng    *entropy.Source
}

func NewRandom(firmID int, cfg sim.Config) *Random {
	return &Random{
		firmID: firmID,
		cfg:    cfg,
		memory: newObsMemory(cfg.ObsHistoryLen),
		rng:    entropy.Derive(cfg.Seed, randomStreamOffset+int64(firmID)),
	}
}

func (r *Random) FirmID() int { return r.firmID }

func (r *Random) Act(obs sim.Observation) sim.Action {
	r.memory.remember(obs)
	return sim.Action{
		Price:            r.rng.Uniform(r.cfg.PriceMin, r.cfg.PriceMax),
		ProductionTarget: r.rng.Uniform(0, 100),
		ProcurementBid:   r.rng.Uniform(20, 100),
	}
}

// Reset rewinds the sample stream so repeated episodes replay identically.
func (r *Random) Reset() {
	r.memory.clear()
	r.rng = entropy.Derive(r.cfg.Seed, randomStreamOffset+int64(r.firmID))
}
