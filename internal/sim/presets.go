package sim

import (
	"fmt"
	"sort"

	"github.com/talgya/limsim/internal/entropy"
)

var presets = map[string]func() Config{
	"baseline":     baselineConfig,
	"high_shock":   highShockConfig,
	"cartel_prone": cartelProneConfig,
	"policy_test":  policyTestConfig,
	"quick_test":   quickTestConfig,
}

// Preset returns a named scenario. The error lists the known names so a
// typo on the command line is self-explaining.
func Preset(name string) (Config, error) {
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q, available: %v", name, PresetNames())
	}
	return build(), nil
}

// PresetNames lists the available presets in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// baselineConfig is the standard three-firm competition with a moderate
// mid-run shock.
func baselineConfig() Config {
	c := DefaultConfig()
	c.Seed = 42
	c.NFirms = 3
	c.Horizon = 36
	c.Shock = ShockConfig{Type: ShockLithiumSupply, Magnitude: 0.40, Duration: 8, Start: 10, RecoveryRate: 1.0}
	c.Rules = RulesConfig{Tariff: 0.05, RouteCapacity: 1.0, StorageCap: 1.0, DemandElasticity: 1.2}
	c.Agent = AgentConfig{Type: AgentHeuristic}
	c.BaseDemand = 250
	c.BasePrice = 80
	c.BaseSupply = 300
	return c
}

// highShockConfig models a severe disruption with constrained shipping and
// slow recovery.
func highShockConfig() Config {
	c := DefaultConfig()
	c.Seed = 7
	c.NFirms = 3
	c.Horizon = 48
	c.Shock = ShockConfig{Type: ShockLithiumSupply, Magnitude: 0.65, Duration: 12, Start: 8, RecoveryRate: 0.5}
	c.Rules = RulesConfig{Tariff: 0.08, RouteCapacity: 0.7, StorageCap: 1.2, DemandElasticity: 1.5}
	c.Agent = AgentConfig{Type: AgentHeuristic}
	c.BaseDemand = 280
	c.BasePrice = 85
	c.BaseSupply = 320
	return c
}

// cartelProneConfig biases the market toward collusion: inelastic demand,
// low tariff, generous storage, and agents nudged to follow price moves.
func cartelProneConfig() Config {
	c := DefaultConfig()
	c.Seed = 123
	c.NFirms = 3
	c.Horizon = 40
	c.Shock = ShockConfig{Type: ShockLithiumSupply, Magnitude: 0.50, Duration: 10, Start: 12, RecoveryRate: 1.0}
	c.Rules = RulesConfig{Tariff: 0.02, RouteCapacity: 0.8, StorageCap: 1.5, DemandElasticity: 0.8}
	c.Agent = AgentConfig{Type: AgentHeuristic, Params: map[string]float64{"collusion_bias": 0.3}}
	c.BaseDemand = 220
	c.BasePrice = 90
	c.BaseSupply = 280
	return c
}

// policyTestConfig exercises the policy levers together: higher tariff,
// expanded routes, tight storage, and a production subsidy.
func policyTestConfig() Config {
	c := DefaultConfig()
	c.Seed = 99
	c.NFirms = 4
	c.Horizon = 36
	c.Shock = ShockConfig{Type: ShockLithiumSupply, Magnitude: 0.45, Duration: 10, Start: 8, RecoveryRate: 1.0}
	c.Rules = RulesConfig{Tariff: 0.10, RouteCapacity: 1.2, StorageCap: 0.8, DemandElasticity: 1.3, SubsidyRate: 0.05}
	c.Agent = AgentConfig{Type: AgentHeuristic}
	c.BaseDemand = 260
	c.BasePrice = 82
	c.BaseSupply = 310
	return c
}

// quickTestConfig is a two-firm, twelve-period run for fast checks.
func quickTestConfig() Config {
	c := DefaultConfig()
	c.Seed = 1
	c.NFirms = 2
	c.Horizon = 12
	c.Shock = ShockConfig{Type: ShockLithiumSupply, Magnitude: 0.30, Duration: 3, Start: 4, RecoveryRate: 1.0}
	c.Rules = RulesConfig{Tariff: 0.05, RouteCapacity: 1.0, StorageCap: 1.0, DemandElasticity: 1.0}
	c.Agent = AgentConfig{Type: AgentHeuristic}
	c.BaseDemand = 200
	c.BasePrice = 75
	c.BaseSupply = 250
	return c
}

// RandomConfig draws a scenario for domain randomization. The given seed
// fixes the draw, so sweeps can be reproduced.
func RandomConfig(seed int64) Config {
	rng := entropy.NewSource(seed)
	c := DefaultConfig()
	c.Seed = int64(rng.Intn(10000))
	c.NFirms = rng.IntBetween(2, 5)
	c.Horizon = rng.IntBetween(24, 60)
	c.Shock = ShockConfig{
		Type:         ShockLithiumSupply,
		Magnitude:    rng.Uniform(0.3, 0.7),
		Duration:     rng.IntBetween(6, 15),
		Start:        rng.IntBetween(5, 12),
		RecoveryRate: rng.Uniform(0.5, 1.0),
	}
	c.Rules = RulesConfig{
		Tariff:           rng.Uniform(0.0, 0.15),
		RouteCapacity:    rng.Uniform(0.6, 1.5),
		StorageCap:       rng.Uniform(0.8, 2.0),
		DemandElasticity: rng.Uniform(0.8, 2.0),
	}
	c.Agent = AgentConfig{Type: AgentHeuristic}
	c.BaseDemand = rng.Uniform(200, 300)
	c.BasePrice = rng.Uniform(70, 95)
	c.BaseSupply = rng.Uniform(250, 350)
	c.Normalize()
	return c
}
