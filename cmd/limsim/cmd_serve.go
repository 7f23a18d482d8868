package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/limsim/internal/api"
)

var serveFlags struct {
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve exposes the simulator over HTTP: scenario presets for discovery
and POST endpoints that run rollouts, baselines, and policy comparisons.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 8000, "Port to listen on")
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := api.NewServer(serveFlags.port, version)
	if err != nil {
		return err
	}
	srv.Start()

	fmt.Printf("Lithium market API: http://localhost:%d/\n", serveFlags.port)
	fmt.Println("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	return nil
}
