package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Firms) != 3 {
		t.Errorf("normalized firm count = %d, want 3", len(cfg.Firms))
	}
}

func TestDefaultFirmsSpread(t *testing.T) {
	firms := DefaultFirms(3)
	if firms[0].Capacity != 90 {
		t.Errorf("firm 0 capacity = %v, want 90", firms[0].Capacity)
	}
	if firms[2].Capacity != 110 {
		t.Errorf("firm 2 capacity = %v, want 110", firms[2].Capacity)
	}
	if firms[1].Capacity <= firms[0].Capacity || firms[1].Capacity >= firms[2].Capacity {
		t.Errorf("capacity spread not monotonic: %v", firms)
	}
	for i, f := range firms {
		if f.InitialInventory != 50 {
			t.Errorf("firm %d initial inventory = %v, want 50", i, f.InitialInventory)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		frag   string
	}{
		{"too few firms", func(c *Config) { c.NFirms = 1 }, "n_firms"},
		{"too many firms", func(c *Config) { c.NFirms = 11 }, "n_firms"},
		{"short horizon", func(c *Config) { c.Horizon = 5 }, "horizon"},
		{"unknown shock type", func(c *Config) { c.Shock.Type = "earthquake" }, "shock type"},
		{"excessive magnitude", func(c *Config) { c.Shock.Magnitude = 1.5 }, "magnitude"},
		{"zero duration", func(c *Config) { c.Shock.Duration = 0 }, "duration"},
		{"route capacity too low", func(c *Config) { c.Rules.RouteCapacity = 0.05 }, "route_capacity"},
		{"storage cap too high", func(c *Config) { c.Rules.StorageCap = 4 }, "storage_cap"},
		{"elasticity out of range", func(c *Config) { c.Rules.DemandElasticity = 5 }, "demand_elasticity"},
		{"unknown agent", func(c *Config) { c.Agent.Type = "oracle" }, "agent type"},
		{"inverted price bounds", func(c *Config) { c.PriceMin = 100; c.PriceMax = 50 }, "price_max"},
		{"noise too high", func(c *Config) { c.SupplyNoiseStd = 0.9 }, "supply_noise_std"},
		{"negative seed", func(c *Config) { c.Seed = -1 }, "seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Normalize()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.frag) {
				t.Errorf("error %q does not mention %q", err, tt.frag)
			}
		})
	}
}

func TestValidateFirmCountMismatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Firms = DefaultFirms(2)
	if err := cfg.Validate(); err == nil {
		t.Error("firm count mismatch should fail validation")
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := `
seed: 9
n_firms: 4
rules:
  tariff: 0.10
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 9 || cfg.NFirms != 4 {
		t.Errorf("seed/n_firms = %d/%d, want 9/4", cfg.Seed, cfg.NFirms)
	}
	if cfg.Rules.Tariff != 0.10 {
		t.Errorf("tariff = %v, want 0.10", cfg.Rules.Tariff)
	}
	// Untouched fields keep their defaults.
	if cfg.Rules.RouteCapacity != 1.0 {
		t.Errorf("route capacity = %v, want default 1.0", cfg.Rules.RouteCapacity)
	}
	if cfg.Horizon != 36 {
		t.Errorf("horizon = %v, want default 36", cfg.Horizon)
	}
	if len(cfg.Firms) != 4 {
		t.Errorf("firms = %d, want 4 after normalization", len(cfg.Firms))
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("n_firms: 50\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("out-of-range n_firms should fail")
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
