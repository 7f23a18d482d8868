package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/talgya/limsim/internal/runner"
	"github.com/talgya/limsim/internal/sim"
)

// simRequest is the wire form of a scenario override. Sub-objects may be
// partial; absent keys keep their defaults.
type simRequest struct {
	Preset  string          `json:"preset"`
	Seed    *int64          `json:"seed"`
	NFirms  *int            `json:"n_firms"`
	Horizon *int            `json:"horizon"`
	Shock   json.RawMessage `json:"shock"`
	Rules   json.RawMessage `json:"rules"`
	Agent   json.RawMessage `json:"agent"`
}

type compareRequest struct {
	simRequest
	Checkpoint string `json:"checkpoint"`
}

// toConfig resolves a request into a full scenario. A preset pins the
// scenario; the caller may still pick the seed and the policy under test.
func (req simRequest) toConfig() (sim.Config, error) {
	if req.Preset != "" {
		cfg, err := sim.Preset(req.Preset)
		if err != nil {
			return sim.Config{}, err
		}
		if req.Seed != nil {
			cfg.Seed = *req.Seed
		}
		if err := overlay(req.Agent, &cfg.Agent); err != nil {
			return sim.Config{}, err
		}
		return cfg, nil
	}

	cfg := sim.DefaultConfig()
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.NFirms != nil {
		cfg.NFirms = *req.NFirms
	}
	if req.Horizon != nil {
		cfg.Horizon = *req.Horizon
	}
	if err := overlay(req.Shock, &cfg.Shock); err != nil {
		return sim.Config{}, err
	}
	if err := overlay(req.Rules, &cfg.Rules); err != nil {
		return sim.Config{}, err
	}
	if err := overlay(req.Agent, &cfg.Agent); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// overlay unmarshals raw onto dst in place, leaving absent keys alone.
func overlay(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// decodeValidated reads the body, checks it against schema, then decodes
// it into dst.
func decodeValidated(r *http.Request, schema *jsonschema.Schema, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.New("read request body")
	}
	var loose any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return errors.New("invalid json")
	}
	if err := schema.Validate(loose); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":    "limsim",
		"version": s.Version,
		"endpoints": map[string]string{
			"GET /health":             "service health",
			"GET /presets":            "built-in scenario configs",
			"POST /simulate":          "run one scenario",
			"POST /simulate/baseline": "run the heuristic baseline",
			"POST /simulate/compare":  "heuristic versus trained policy",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":    "ok",
		"version":   s.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	names := sim.PresetNames()
	configs := make(map[string]sim.Config, len(names))
	for _, name := range names {
		cfg, err := sim.Preset(name)
		if err != nil {
			continue
		}
		configs[name] = cfg
	}
	writeJSON(w, map[string]any{"presets": configs})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req simRequest
	if err := decodeValidated(r, s.simulateSchema, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := runner.Rollout(cfg)
	if err != nil {
		slog.Error("simulation failed", "err", err)
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}
	slog.Info("simulation complete",
		"run_id", report.RunID,
		"agent", cfg.Agent.Type,
		"periods", len(report.T),
		"stability", report.Metrics.Stability)
	writeJSON(w, report)
}

// handleBaseline runs the scenario with the heuristic policy regardless
// of the requested agent, as the reference point for comparisons.
func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req simRequest
	if err := decodeValidated(r, s.simulateSchema, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg.Agent = sim.AgentConfig{Type: sim.AgentHeuristic}

	report, err := runner.Rollout(cfg)
	if err != nil {
		slog.Error("baseline failed", "err", err)
		http.Error(w, "simulation failed", http.StatusInternalServerError)
		return
	}
	slog.Info("baseline complete", "run_id", report.RunID, "stability", report.Metrics.Stability)
	writeJSON(w, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := decodeValidated(r, s.compareSchema, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Checkpoint != "" {
		cfg.Agent.Checkpoint = req.Checkpoint
	}

	report, err := runner.Compare(cfg)
	if err != nil {
		slog.Error("comparison failed", "err", err)
		http.Error(w, "comparison failed", http.StatusInternalServerError)
		return
	}
	slog.Info("comparison complete",
		"run_id", report.RunID,
		"winner", report.Comparison.Winner,
		"stability_diff", report.Comparison.StabilityDiff)
	writeJSON(w, report)
}
