package runner

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/talgya/limsim/internal/sim"
)

func quickConfig(t *testing.T) sim.Config {
	t.Helper()
	cfg, err := sim.Preset("quick_test")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	return cfg
}

func TestRolloutCompletes(t *testing.T) {
	cfg := quickConfig(t)
	report, err := Rollout(cfg)
	if err != nil {
		t.Fatalf("Rollout: %v", err)
	}

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", report.RunID, err)
	}
	if report.ElapsedMS < 0 {
		t.Errorf("negative elapsed time %v", report.ElapsedMS)
	}
	if got := len(report.T); got != cfg.Horizon {
		t.Fatalf("recorded %d periods, want %d", got, cfg.Horizon)
	}
	if report.Metrics.Stability < 0 || report.Metrics.Stability > 1 {
		t.Errorf("stability %v out of range", report.Metrics.Stability)
	}
	if report.Metrics.CartelLikelihood < 0 || report.Metrics.CartelLikelihood > 1 {
		t.Errorf("cartel likelihood %v out of range", report.Metrics.CartelLikelihood)
	}
}

func TestRolloutDeterministicResults(t *testing.T) {
	cfg := quickConfig(t)
	first, err := Rollout(cfg)
	if err != nil {
		t.Fatalf("first rollout: %v", err)
	}
	second, err := Rollout(cfg)
	if err != nil {
		t.Fatalf("second rollout: %v", err)
	}
	if diff := cmp.Diff(first.Results, second.Results); diff != "" {
		t.Errorf("same seed produced different results (-first +second):\n%s", diff)
	}
	if first.RunID == second.RunID {
		t.Error("distinct runs should get distinct ids")
	}
}

func TestRolloutAgentTypes(t *testing.T) {
	for _, agentType := range []string{sim.AgentHeuristic, sim.AgentRandom, sim.AgentRNN} {
		t.Run(agentType, func(t *testing.T) {
			cfg := quickConfig(t)
			cfg.Agent.Type = agentType
			report, err := Rollout(cfg)
			if err != nil {
				t.Fatalf("Rollout: %v", err)
			}
			if len(report.T) != cfg.Horizon {
				t.Errorf("recorded %d periods, want %d", len(report.T), cfg.Horizon)
			}
		})
	}
}

func TestRolloutRejectsBadInput(t *testing.T) {
	cfg := quickConfig(t)
	cfg.NFirms = 50
	cfg.Firms = nil
	if _, err := Rollout(cfg); err == nil {
		t.Error("expected a config validation error")
	}

	cfg = quickConfig(t)
	cfg.Agent.Type = "telepathy"
	if _, err := Rollout(cfg); err == nil {
		t.Error("expected an unknown agent error")
	}
}

func TestCompareRunsBothArms(t *testing.T) {
	report, err := Compare(quickConfig(t))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if report.Heuristic == nil || report.RNN == nil {
		t.Fatal("both result sets should be populated")
	}
	wantDiff := report.RNN.Metrics.Stability - report.Heuristic.Metrics.Stability
	if math.Abs(report.Comparison.StabilityDiff-wantDiff) > 1e-12 {
		t.Errorf("stability diff = %v, want %v", report.Comparison.StabilityDiff, wantDiff)
	}
	switch report.Comparison.Winner {
	case "rnn":
		if report.Comparison.StabilityDiff <= 0 {
			t.Error("rnn declared winner without a stability edge")
		}
	case "heuristic":
		if report.Comparison.StabilityDiff > 0 {
			t.Error("heuristic declared winner despite losing on stability")
		}
	default:
		t.Errorf("unexpected winner %q", report.Comparison.Winner)
	}
}

func TestCompareDeterministicPerSeed(t *testing.T) {
	cfg := quickConfig(t)
	first, err := Compare(cfg)
	if err != nil {
		t.Fatalf("first compare: %v", err)
	}
	second, err := Compare(cfg)
	if err != nil {
		t.Fatalf("second compare: %v", err)
	}
	if diff := cmp.Diff(first.Comparison, second.Comparison); diff != "" {
		t.Errorf("comparison not reproducible (-first +second):\n%s", diff)
	}
}

func TestEvalSeedsAggregates(t *testing.T) {
	cfg := quickConfig(t)
	report, err := EvalSeeds(cfg, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("EvalSeeds: %v", err)
	}

	if diff := cmp.Diff([]int64{1, 2, 3}, report.Seeds); diff != "" {
		t.Errorf("seed echo (-want +got):\n%s", diff)
	}
	for name, v := range map[string]float64{
		"heuristic stability": report.Heuristic.AvgStability,
		"rnn stability":       report.RNN.AvgStability,
		"heuristic cartel":    report.Heuristic.AvgCartel,
		"rnn cartel":          report.RNN.AvgCartel,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0, 1]", name, v)
		}
	}
	wantImprovement := report.RNN.AvgStability - report.Heuristic.AvgStability
	if math.Abs(report.StabilityImprovement-wantImprovement) > 1e-12 {
		t.Errorf("stability improvement = %v, want %v", report.StabilityImprovement, wantImprovement)
	}
	wantReduction := report.Heuristic.AvgCartel - report.RNN.AvgCartel
	if math.Abs(report.CartelReduction-wantReduction) > 1e-12 {
		t.Errorf("cartel reduction = %v, want %v", report.CartelReduction, wantReduction)
	}
	if report.Winner != "rnn" && report.Winner != "heuristic" {
		t.Errorf("unexpected winner %q", report.Winner)
	}
	if got := report.RNNWins + report.HeuristicWins; got != 3 {
		t.Errorf("wins = %d rnn + %d heuristic, want 3 total", report.RNNWins, report.HeuristicWins)
	}
}

func TestEvalSeedsRequiresSeeds(t *testing.T) {
	if _, err := EvalSeeds(quickConfig(t), nil); err == nil {
		t.Error("expected an error for an empty seed list")
	}
}
