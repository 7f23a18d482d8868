package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/talgya/limsim/internal/sim"
)

var presetsFlags struct {
	show string
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in scenarios",
	RunE:  runPresets,
}

func init() {
	presetsCmd.Flags().StringVar(&presetsFlags.show, "show", "", "Print one preset as YAML instead of the table")
}

func runPresets(cmd *cobra.Command, _ []string) error {
	if presetsFlags.show != "" {
		cfg, err := sim.Preset(presetsFlags.show)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name\tFirms\tPeriods\tShock\tAgent\n")
	fmt.Fprintf(w, "----\t-----\t-------\t-----\t-----\n")
	for _, name := range sim.PresetNames() {
		cfg, err := sim.Preset(name)
		if err != nil {
			return err
		}
		shock := fmt.Sprintf("%s -%.0f%% at t=%d for %d",
			cfg.Shock.Type, cfg.Shock.Magnitude*100, cfg.Shock.Start, cfg.Shock.Duration)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", name, cfg.NFirms, cfg.Horizon, shock, cfg.Agent.Type)
	}
	return w.Flush()
}
