package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPresetsAllValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset: %v", err)
			}
			cfg.Normalize()
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %q invalid: %v", name, err)
			}
		})
	}
}

func TestPresetValues(t *testing.T) {
	baseline := mustPreset(t, "baseline")
	if baseline.Seed != 42 || baseline.NFirms != 3 || baseline.Horizon != 36 {
		t.Errorf("baseline = seed %d, firms %d, horizon %d", baseline.Seed, baseline.NFirms, baseline.Horizon)
	}
	if baseline.Shock.Start != 10 || baseline.Shock.Magnitude != 0.40 {
		t.Errorf("baseline shock = %+v", baseline.Shock)
	}

	highShock := mustPreset(t, "high_shock")
	if highShock.Shock.Magnitude != 0.65 || highShock.Shock.RecoveryRate != 0.5 {
		t.Errorf("high_shock shock = %+v", highShock.Shock)
	}
	if highShock.Rules.RouteCapacity != 0.7 {
		t.Errorf("high_shock route capacity = %v, want 0.7", highShock.Rules.RouteCapacity)
	}

	cartel := mustPreset(t, "cartel_prone")
	if cartel.Agent.Params["collusion_bias"] != 0.3 {
		t.Errorf("cartel_prone collusion bias = %v, want 0.3", cartel.Agent.Params["collusion_bias"])
	}
	if cartel.Rules.DemandElasticity != 0.8 {
		t.Errorf("cartel_prone elasticity = %v, want 0.8", cartel.Rules.DemandElasticity)
	}

	policy := mustPreset(t, "policy_test")
	if policy.NFirms != 4 || policy.Rules.SubsidyRate != 0.05 {
		t.Errorf("policy_test firms/subsidy = %d/%v", policy.NFirms, policy.Rules.SubsidyRate)
	}
}

func TestPresetUnknown(t *testing.T) {
	if _, err := Preset("nonexistent"); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestPresetNamesSorted(t *testing.T) {
	names := PresetNames()
	if len(names) != 5 {
		t.Fatalf("got %d presets, want 5", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("preset names not sorted: %v", names)
		}
	}
}

func TestRandomConfigDeterministic(t *testing.T) {
	a := RandomConfig(5)
	b := RandomConfig(5)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different configs:\n%s", diff)
	}
	c := RandomConfig(6)
	if diff := cmp.Diff(a, c); diff == "" {
		t.Error("different seeds produced identical configs")
	}
}

func TestRandomConfigInRange(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		cfg := RandomConfig(seed)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if cfg.NFirms < 2 || cfg.NFirms > 4 {
			t.Errorf("seed %d: n_firms = %d, want 2..4", seed, cfg.NFirms)
		}
		if cfg.Horizon < 24 || cfg.Horizon >= 60 {
			t.Errorf("seed %d: horizon = %d, want [24, 60)", seed, cfg.Horizon)
		}
		if cfg.Shock.Magnitude < 0.3 || cfg.Shock.Magnitude > 0.7 {
			t.Errorf("seed %d: magnitude = %v, want [0.3, 0.7]", seed, cfg.Shock.Magnitude)
		}
	}
}
