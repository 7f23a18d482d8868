// Package api serves simulation runs over HTTP.
// GET endpoints are public discovery (service info, health, presets).
// POST endpoints run scenarios; request bodies are validated against the
// JSON Schemas embedded with the package before they touch the simulator.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request bodies beyond this size are cut off mid-read.
const maxBodyBytes = 1 << 20

// Simulation endpoints share one per-IP budget.
const (
	simulateRateLimit  = 60
	simulateRateWindow = time.Minute
)

// Server serves scenario runs over HTTP.
type Server struct {
	Port    int
	Version string

	simulateSchema *jsonschema.Schema
	compareSchema  *jsonschema.Schema
}

// NewServer compiles the embedded request schemas and builds the server.
func NewServer(port int, version string) (*Server, error) {
	compiler, err := newSchemaCompiler()
	if err != nil {
		return nil, err
	}
	simulateSchema, err := compiler.Compile("simulate_request.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile simulate schema: %w", err)
	}
	compareSchema, err := compiler.Compile("compare_request.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile compare schema: %w", err)
	}
	return &Server{
		Port:           port,
		Version:        version,
		simulateSchema: simulateSchema,
		compareSchema:  compareSchema,
	}, nil
}

// Handler builds the full route table wrapped in CORS and rate limiting.
func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(simulateRateLimit, simulateRateWindow)

	mux := http.NewServeMux()

	// Public discovery endpoints.
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/presets", s.handlePresets)

	// Simulation endpoints (POST, rate limited).
	mux.HandleFunc("/simulate", RateLimitMiddleware(limiter, s.handleSimulate))
	mux.HandleFunc("/simulate/baseline", RateLimitMiddleware(limiter, s.handleBaseline))
	mux.HandleFunc("/simulate/compare", RateLimitMiddleware(limiter, s.handleCompare))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "version", s.Version)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed dashboard origins. Set
// LIMSIM_CORS_ORIGINS to a comma-separated list of extra origins;
// localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("LIMSIM_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
