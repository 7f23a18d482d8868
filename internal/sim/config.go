// Package sim implements the multi-firm lithium market simulator: scenario
// configuration, the period loop with procurement, production, and market
// clearing, partial observations for agents, and end-of-run results.
package sim

import "fmt"

// Shock types. Only the lithium supply shock changes dynamics today; the
// other tags are accepted so scenario files can be exchanged with tools
// that model demand and route shocks.
const (
	ShockLithiumSupply = "lithium_supply"
	ShockDemand        = "demand"
	ShockRoute         = "route"
)

// Agent types understood by the loader.
const (
	AgentHeuristic = "heuristic"
	AgentRNN       = "rnn"
	AgentRandom    = "random"
)

// ShockConfig describes the supply disruption for a run.
type ShockConfig struct {
	Type         string  `json:"type" yaml:"type"`
	Magnitude    float64 `json:"magnitude" yaml:"magnitude"`
	Duration     int     `json:"duration" yaml:"duration"`
	Start        int     `json:"start" yaml:"start"`
	RecoveryRate float64 `json:"recovery_rate" yaml:"recovery_rate"`
}

// RulesConfig holds the policy levers under evaluation. SubsidyRate is
// carried through to results for downstream analysis but does not alter
// market dynamics.
type RulesConfig struct {
	Tariff           float64 `json:"tariff" yaml:"tariff"`
	RouteCapacity    float64 `json:"route_capacity" yaml:"route_capacity"`
	StorageCap       float64 `json:"storage_cap" yaml:"storage_cap"`
	DemandElasticity float64 `json:"demand_elasticity" yaml:"demand_elasticity"`
	SubsidyRate      float64 `json:"subsidy_rate" yaml:"subsidy_rate"`
}

// AgentConfig selects the decision policy driving every firm.
type AgentConfig struct {
	Type       string             `json:"type" yaml:"type"`
	Checkpoint string             `json:"checkpoint,omitempty" yaml:"checkpoint,omitempty"`
	Params     map[string]float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// FirmConfig holds one firm's characteristics.
type FirmConfig struct {
	Capacity         float64 `json:"capacity" yaml:"capacity"`
	CostBase         float64 `json:"cost_base" yaml:"cost_base"`
	InitialInventory float64 `json:"initial_inventory" yaml:"initial_inventory"`
	StorageCapacity  float64 `json:"storage_capacity" yaml:"storage_capacity"`
}

// Config is the master scenario description. Build one from
// DefaultConfig, a preset, or a YAML file, then override fields.
type Config struct {
	Seed    int64 `json:"seed" yaml:"seed"`
	NFirms  int   `json:"n_firms" yaml:"n_firms"`
	Horizon int   `json:"horizon" yaml:"horizon"`

	Shock ShockConfig `json:"shock" yaml:"shock"`
	Rules RulesConfig `json:"rules" yaml:"rules"`
	Agent AgentConfig `json:"agent" yaml:"agent"`

	BaseDemand float64 `json:"base_demand" yaml:"base_demand"`
	BasePrice  float64 `json:"base_price" yaml:"base_price"`
	BaseSupply float64 `json:"base_supply" yaml:"base_supply"`
	PriceMin   float64 `json:"price_min" yaml:"price_min"`
	PriceMax   float64 `json:"price_max" yaml:"price_max"`

	// Firms defaults to a heterogeneous spread when left empty; see
	// DefaultFirms.
	Firms []FirmConfig `json:"firm_configs,omitempty" yaml:"firm_configs,omitempty"`

	ObsHistoryLen  int     `json:"obs_history_len" yaml:"obs_history_len"`
	SupplyNoiseStd float64 `json:"supply_noise_std" yaml:"supply_noise_std"`
}

// DefaultConfig returns the standard three-firm scenario.
func DefaultConfig() Config {
	return Config{
		Seed:    42,
		NFirms:  3,
		Horizon: 36,
		Shock: ShockConfig{
			Type:         ShockLithiumSupply,
			Magnitude:    0.4,
			Duration:     8,
			Start:        6,
			RecoveryRate: 1.0,
		},
		Rules: RulesConfig{
			Tariff:           0.05,
			RouteCapacity:    1.0,
			StorageCap:       1.0,
			DemandElasticity: 1.2,
			SubsidyRate:      0.0,
		},
		Agent:          AgentConfig{Type: AgentHeuristic},
		BaseDemand:     250,
		BasePrice:      80,
		BaseSupply:     300,
		PriceMin:       40,
		PriceMax:       200,
		ObsHistoryLen:  6,
		SupplyNoiseStd: 0.15,
	}
}

// DefaultFirms spreads capacity, cost, and storage across n firms so the
// market is heterogeneous out of the box. Firm 0 is the smallest; the
// spread tops out 20% above it.
func DefaultFirms(n int) []FirmConfig {
	firms := make([]FirmConfig, n)
	denom := float64(max(n-1, 1))
	for i := range firms {
		spread := float64(i) / denom
		firms[i] = FirmConfig{
			Capacity:         100 * (0.9 + 0.2*spread),
			CostBase:         50 * (0.95 + 0.1*spread),
			InitialInventory: 50,
			StorageCapacity:  100 * (0.9 + 0.2*spread),
		}
	}
	return firms
}

// Normalize fills derived fields that depend on others, currently just the
// default firm spread.
func (c *Config) Normalize() {
	if len(c.Firms) == 0 {
		c.Firms = DefaultFirms(c.NFirms)
	}
}

// Validate checks every field against its legal range.
func (c Config) Validate() error {
	if c.Seed < 0 {
		return fmt.Errorf("seed must be non-negative, got %d", c.Seed)
	}
	if c.NFirms < 2 || c.NFirms > 10 {
		return fmt.Errorf("n_firms must be between 2 and 10, got %d", c.NFirms)
	}
	if c.Horizon < 10 || c.Horizon > 200 {
		return fmt.Errorf("horizon must be between 10 and 200, got %d", c.Horizon)
	}
	switch c.Shock.Type {
	case ShockLithiumSupply, ShockDemand, ShockRoute:
	default:
		return fmt.Errorf("unknown shock type %q", c.Shock.Type)
	}
	if c.Shock.Magnitude < 0 || c.Shock.Magnitude > 1 {
		return fmt.Errorf("shock magnitude must be in [0, 1], got %v", c.Shock.Magnitude)
	}
	if c.Shock.Duration < 1 {
		return fmt.Errorf("shock duration must be at least 1, got %d", c.Shock.Duration)
	}
	if c.Shock.Start < 0 {
		return fmt.Errorf("shock start must be non-negative, got %d", c.Shock.Start)
	}
	if c.Shock.RecoveryRate < 0 || c.Shock.RecoveryRate > 1 {
		return fmt.Errorf("shock recovery_rate must be in [0, 1], got %v", c.Shock.RecoveryRate)
	}
	if c.Rules.Tariff < 0 || c.Rules.Tariff > 1 {
		return fmt.Errorf("tariff must be in [0, 1], got %v", c.Rules.Tariff)
	}
	if c.Rules.RouteCapacity < 0.1 || c.Rules.RouteCapacity > 2.0 {
		return fmt.Errorf("route_capacity must be in [0.1, 2.0], got %v", c.Rules.RouteCapacity)
	}
	if c.Rules.StorageCap < 0.5 || c.Rules.StorageCap > 3.0 {
		return fmt.Errorf("storage_cap must be in [0.5, 3.0], got %v", c.Rules.StorageCap)
	}
	if c.Rules.DemandElasticity < 0.1 || c.Rules.DemandElasticity > 3.0 {
		return fmt.Errorf("demand_elasticity must be in [0.1, 3.0], got %v", c.Rules.DemandElasticity)
	}
	if c.Rules.SubsidyRate < 0 || c.Rules.SubsidyRate > 0.5 {
		return fmt.Errorf("subsidy_rate must be in [0, 0.5], got %v", c.Rules.SubsidyRate)
	}
	switch c.Agent.Type {
	case AgentHeuristic, AgentRNN, AgentRandom:
	default:
		return fmt.Errorf("unknown agent type %q", c.Agent.Type)
	}
	if c.BaseDemand <= 0 || c.BasePrice <= 0 || c.BaseSupply <= 0 {
		return fmt.Errorf("base_demand, base_price, and base_supply must be positive")
	}
	if c.PriceMin <= 0 {
		return fmt.Errorf("price_min must be positive, got %v", c.PriceMin)
	}
	if c.PriceMax <= c.PriceMin {
		return fmt.Errorf("price_max %v must exceed price_min %v", c.PriceMax, c.PriceMin)
	}
	if c.ObsHistoryLen < 1 || c.ObsHistoryLen > 20 {
		return fmt.Errorf("obs_history_len must be between 1 and 20, got %d", c.ObsHistoryLen)
	}
	if c.SupplyNoiseStd < 0 || c.SupplyNoiseStd > 0.5 {
		return fmt.Errorf("supply_noise_std must be in [0, 0.5], got %v", c.SupplyNoiseStd)
	}
	if len(c.Firms) != c.NFirms {
		return fmt.Errorf("firm_configs has %d entries for %d firms", len(c.Firms), c.NFirms)
	}
	for i, f := range c.Firms {
		if f.Capacity <= 0 || f.CostBase <= 0 || f.StorageCapacity <= 0 {
			return fmt.Errorf("firm %d: capacity, cost_base, and storage_capacity must be positive", i)
		}
		if f.InitialInventory < 0 {
			return fmt.Errorf("firm %d: initial_inventory must be non-negative", i)
		}
	}
	return nil
}
