package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/talgya/limsim/internal/runner"
	"github.com/talgya/limsim/internal/sim"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(0, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func getPath(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := getPath(t, testServer(t).Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("unexpected health body: %v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", body["timestamp"], err)
	}
}

func TestRootIndexAndNotFound(t *testing.T) {
	handler := testServer(t).Handler()

	rec := getPath(t, handler, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/simulate") {
		t.Error("index should list the simulate endpoint")
	}

	if rec := getPath(t, handler, "/no/such/path"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPresetsEndpoint(t *testing.T) {
	rec := getPath(t, testServer(t).Handler(), "/presets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Presets map[string]sim.Config `json:"presets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	quick, ok := body.Presets["quick_test"]
	if !ok {
		t.Fatalf("quick_test missing from %d presets", len(body.Presets))
	}
	if quick.NFirms != 2 || quick.Horizon != 12 {
		t.Errorf("quick_test echoed as %d firms over %d periods", quick.NFirms, quick.Horizon)
	}
}

func TestSimulateWithPreset(t *testing.T) {
	rec := postJSON(t, testServer(t).Handler(), "/simulate", `{"preset": "quick_test"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var report runner.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.RunID == "" {
		t.Error("missing run id")
	}
	if len(report.T) != 12 {
		t.Errorf("recorded %d periods, want 12", len(report.T))
	}
	if report.Metrics.Stability < 0 || report.Metrics.Stability > 1 {
		t.Errorf("stability %v out of range", report.Metrics.Stability)
	}
}

// Partial sub-objects only override the keys they carry.
func TestSimulateOverlaysPartialRules(t *testing.T) {
	body := `{"seed": 7, "n_firms": 2, "horizon": 12, "rules": {"tariff": 0.2}}`
	rec := postJSON(t, testServer(t).Handler(), "/simulate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var report runner.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := report.Config.Rules.Tariff; got != 0.2 {
		t.Errorf("tariff = %v, want 0.2", got)
	}
	if got := report.Config.Rules.RouteCapacity; got != 1.0 {
		t.Errorf("route capacity = %v, want the untouched default 1.0", got)
	}
	if report.Config.NFirms != 2 {
		t.Errorf("n_firms = %d, want 2", report.Config.NFirms)
	}
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	handler := testServer(t).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"n_firms above range", `{"n_firms": 50}`},
		{"negative seed", `{"seed": -3}`},
		{"unknown field", `{"firms": 3}`},
		{"unknown agent type", `{"agent": {"type": "alphazero"}}`},
		{"unknown preset", `{"preset": "does_not_exist"}`},
		{"tariff above range", `{"rules": {"tariff": 2.5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler, "/simulate", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSimulateMethodGuard(t *testing.T) {
	rec := getPath(t, testServer(t).Handler(), "/simulate")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestBaselineForcesHeuristic(t *testing.T) {
	cfg, err := sim.Preset("quick_test")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	cfg.Agent = sim.AgentConfig{Type: sim.AgentHeuristic}
	want, err := runner.Rollout(cfg)
	if err != nil {
		t.Fatalf("reference rollout: %v", err)
	}

	body := `{"preset": "quick_test", "agent": {"type": "random"}}`
	rec := postJSON(t, testServer(t).Handler(), "/simulate/baseline", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got runner.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want.Results, got.Results); diff != "" {
		t.Errorf("baseline did not run the heuristic policy (-want +got):\n%s", diff)
	}
}

func TestCompareEndpoint(t *testing.T) {
	rec := postJSON(t, testServer(t).Handler(), "/simulate/compare", `{"preset": "quick_test"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var report runner.CompareReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Heuristic == nil || report.RNN == nil {
		t.Fatal("both result sets should be present")
	}
	if w := report.Comparison.Winner; w != "rnn" && w != "heuristic" {
		t.Errorf("unexpected winner %q", w)
	}
}

// A checkpoint path that cannot be read still yields a run; the policy
// falls back to seeded random weights.
func TestCompareSurvivesMissingCheckpoint(t *testing.T) {
	body := `{"preset": "quick_test", "checkpoint": "/no/such/weights.json"}`
	rec := postJSON(t, testServer(t).Handler(), "/simulate/compare", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := testServer(t).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}
}
