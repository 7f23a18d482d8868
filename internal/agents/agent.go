// Package agents implements the decision policies that drive firms: a
// calibrated rule-based heuristic, a uniform-random baseline, and a
// recurrent neural policy restored from a checkpoint.
package agents

import (
	"fmt"

	"github.com/talgya/limsim/internal/sim"
)

// Seed stream offsets keep each agent's draws independent of the
// environment and of the other firms.
const (
	randomStreamOffset = 1000
	rnnInitOffset      = 2000
)

// Agent maps one firm's observation to its next action.
type Agent interface {
	// FirmID reports which firm this agent controls.
	FirmID() int

	// Act decides the firm's price, production target, and procurement
	// bid for the coming period.
	Act(obs sim.Observation) sim.Action

	// Reset clears internal state between episodes.
	Reset()
}

// New builds one agent per firm according to the scenario's agent section.
func New(cfg sim.Config) ([]Agent, error) {
	roster := make([]Agent, cfg.NFirms)
	for i := range roster {
		switch cfg.Agent.Type {
		case sim.AgentHeuristic:
			roster[i] = NewHeuristic(i, cfg, cfg.Agent.Params)
		case sim.AgentRNN:
			roster[i] = NewRNN(i, cfg, cfg.Agent.Checkpoint)
		case sim.AgentRandom:
			roster[i] = NewRandom(i, cfg)
		default:
			return nil, fmt.Errorf("unknown agent type %q", cfg.Agent.Type)
		}
	}
	return roster, nil
}

// ResetAll prepares every agent for a fresh episode.
func ResetAll(roster []Agent) {
	for _, a := range roster {
		a.Reset()
	}
}

func paramOr(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}
