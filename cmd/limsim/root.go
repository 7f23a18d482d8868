// Command limsim runs lithium market scenarios from the terminal:
// single rollouts, policy comparisons, preset inspection, and the HTTP
// API server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "limsim",
	Short: "Multi-firm lithium market simulator",
	Long: "Limsim simulates a lithium commodity market under supply shocks and\n" +
		"trade policy, and scores pricing policies on stability, welfare, and\n" +
		"collusion risk.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(*cobra.Command, []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(rootFlags.logLevel)); err != nil {
			return fmt.Errorf("unknown log level %q", rootFlags.logLevel)
		}
		slog.SetDefault(slog.New(
			tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: "15:04:05",
			}),
		))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	rootCmd.AddCommand(rolloutCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
