package agents

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/limsim/internal/entropy"
	"github.com/talgya/limsim/internal/sim"
)

// tinyCheckpoint keeps the hidden layer at width 4 so test arithmetic
// stays far from gate saturation.
func tinyCheckpoint() checkpoint {
	return randomCheckpoint(entropy.NewSource(5), obsDim, 4)
}

// calmObs keeps every feature near unit scale, where the small random
// nets respond smoothly.
func calmObs() sim.Observation {
	return sim.Observation{
		OwnInventory:      0.5,
		OwnLastPrice:      0.75,
		OwnLastProduction: 0.6,
		OwnLastSales:      0.55,
		MarketPriceIndex:  0.75,
		TradeFillRatio:    1.0,
		SupplySignal:      1.2,
		DemandSignal:      1.1,
		TimeStep:          1,
		Tariff:            0.05,
		RouteCapacity:     1.0,
		StorageCap:        1.0,
		Elasticity:        1.0,
	}
}

func mustWriteCheckpoint(t *testing.T, ck checkpoint) string {
	t.Helper()
	raw, err := json.Marshal(ck)
	if err != nil {
		t.Fatalf("marshal checkpoint: %v", err)
	}
	path := filepath.Join(t.TempDir(), "policy.json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	return path
}

func TestFeaturizeShape(t *testing.T) {
	obs := steadyObs()
	obs.TimeStep = 3
	features := featurize(obs, 12)
	if len(features) != obsDim {
		t.Fatalf("got %d features, want %d", len(features), obsDim)
	}
	if !approxEqual(features[len(features)-1], 0.25) {
		t.Errorf("horizon progress = %v, want 0.25", features[len(features)-1])
	}
}

func TestRNNCheckpointRoundtrip(t *testing.T) {
	cfg := testConfig(t)
	ck := tinyCheckpoint()
	path := mustWriteCheckpoint(t, ck)

	obs := calmObs()
	ref := newRNNPolicy(ck)
	wantRaw, wantProd, wantProc := ref.step(featurize(obs, cfg.Horizon))
	wantPrice := cfg.PriceMin + (cfg.PriceMax-cfg.PriceMin)*sigmoid(wantRaw)

	agent := NewRNN(0, cfg, path)
	got := agent.Act(obs)
	if !approxEqual(got.Price, wantPrice) {
		t.Errorf("price = %v, want %v", got.Price, wantPrice)
	}
	if !approxEqual(got.ProductionTarget, wantProd) {
		t.Errorf("production = %v, want %v", got.ProductionTarget, wantProd)
	}
	if !approxEqual(got.ProcurementBid, wantProc) {
		t.Errorf("procurement = %v, want %v", got.ProcurementBid, wantProc)
	}
}

func TestRNNHiddenStateEvolvesAndResets(t *testing.T) {
	cfg := testConfig(t)
	agent := NewRNN(0, cfg, mustWriteCheckpoint(t, tinyCheckpoint()))

	obs := calmObs()
	first := agent.Act(obs)
	second := agent.Act(obs)
	if first.Price == second.Price {
		t.Error("identical observations should still move the price as the hidden state advances")
	}

	agent.Reset()
	replay := agent.Act(obs)
	if diff := cmp.Diff(first, replay); diff != "" {
		t.Errorf("first action after reset differs (-before +after):\n%s", diff)
	}
}

func TestRNNActionsStayLegal(t *testing.T) {
	cfg := testConfig(t)
	agent := NewRNN(0, cfg, "")

	obs := steadyObs()
	for i := 0; i < 20; i++ {
		obs.TimeStep = i
		got := agent.Act(obs)
		if got.Price < cfg.PriceMin || got.Price > cfg.PriceMax {
			t.Fatalf("step %d: price %v outside [%v, %v]", i, got.Price, cfg.PriceMin, cfg.PriceMax)
		}
		if got.ProductionTarget < 0 {
			t.Fatalf("step %d: negative production %v", i, got.ProductionTarget)
		}
		if got.ProcurementBid < 0 {
			t.Fatalf("step %d: negative procurement %v", i, got.ProcurementBid)
		}
	}
}

func TestRNNFallbackIsDeterministic(t *testing.T) {
	cfg := testConfig(t)

	badPath := filepath.Join(t.TempDir(), "garbage.json")
	if err := os.WriteFile(badPath, []byte("not json"), 0644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	obs := calmObs()
	fromBadFile := NewRNN(0, cfg, badPath).Act(obs)
	fromNoFile := NewRNN(0, cfg, "").Act(obs)
	if diff := cmp.Diff(fromBadFile, fromNoFile); diff != "" {
		t.Errorf("fallback differs from fresh random init (-bad +none):\n%s", diff)
	}

	otherFirm := NewRNN(1, cfg, "").Act(obs)
	if fromNoFile.Price == otherFirm.Price {
		t.Error("different firms should get independent random weights")
	}
}

func TestCheckpointValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*checkpoint)
	}{
		{"wrong obs dim", func(c *checkpoint) { c.ObsDim = 7 }},
		{"hidden too small", func(c *checkpoint) { c.HiddenDim = 1 }},
		{"encoder shape", func(c *checkpoint) { c.Encoder.Hidden.W = c.Encoder.Hidden.W[1:] }},
		{"gru gate shape", func(c *checkpoint) { c.GRU.UZ = nil }},
		{"head shape", func(c *checkpoint) { c.PriceHead.Out.B = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ck := tinyCheckpoint()
			if err := ck.validate(); err != nil {
				t.Fatalf("baseline checkpoint invalid: %v", err)
			}
			tt.mutate(&ck)
			if err := ck.validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadCheckpointErrors(t *testing.T) {
	if _, err := loadCheckpoint(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}

	ck := tinyCheckpoint()
	ck.ObsDim = 7
	path := mustWriteCheckpoint(t, ck)
	if _, err := loadCheckpoint(path); err == nil {
		t.Error("expected a validation error for mismatched dimensions")
	}
}
