// Command limsimd runs the lithium market API as a long-lived service.
// Unlike the interactive CLI it is configured entirely from the
// environment, logs JSON, and is meant to sit behind systemd or a
// container supervisor.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/talgya/limsim/internal/api"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// Configuration from environment.
	port := envIntOrDefault("LIMSIM_PORT", 8000)
	var level slog.Level
	if err := level.UnmarshalText([]byte(envOrDefault("LIMSIM_LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	srv, err := api.NewServer(port, version)
	if err != nil {
		slog.Error("server init failed", "err", err)
		os.Exit(1)
	}

	slog.Info("limsimd starting", "port", port, "version", version)
	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
