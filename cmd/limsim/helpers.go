package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/talgya/limsim/internal/sim"
)

// resolveConfig builds the scenario from a YAML file when one is given,
// otherwise from the named preset.
func resolveConfig(configPath, preset string) (sim.Config, error) {
	if configPath != "" {
		return sim.LoadConfig(configPath)
	}
	return sim.Preset(preset)
}

// writeReport saves a result document as indented JSON, creating the
// output directory when needed.
func writeReport(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
