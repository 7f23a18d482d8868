// Package runner drives complete simulation episodes: it wires agents to
// an environment, loops until the horizon, and packages the results. It
// also runs head-to-head policy comparisons.
package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/limsim/internal/agents"
	"github.com/talgya/limsim/internal/sim"
)

// Report is one finished run, tagged for logs and output files.
type Report struct {
	RunID     string  `json:"run_id"`
	ElapsedMS float64 `json:"elapsed_ms"`
	*sim.Results
}

// Rollout runs one scenario from reset to horizon with the agent type
// named in the config.
func Rollout(cfg sim.Config) (*Report, error) {
	env, err := sim.NewEnv(cfg)
	if err != nil {
		return nil, err
	}
	roster, err := agents.New(env.Config())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	obs := env.Reset()
	agents.ResetAll(roster)
	for !env.Done() {
		actions := make([]sim.Action, len(roster))
		for i, a := range roster {
			actions[i] = a.Act(obs[i])
		}
		obs, _, _, err = env.Step(actions)
		if err != nil {
			return nil, err
		}
	}

	return &Report{
		RunID:     uuid.NewString(),
		ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Results:   env.Results(),
	}, nil
}
