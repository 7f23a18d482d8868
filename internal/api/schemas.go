package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// newSchemaCompiler registers every embedded schema so cross-file $ref
// resolution stays in memory.
func newSchemaCompiler() (*jsonschema.Compiler, error) {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %q: %w", e.Name(), err)
		}
		if err := compiler.AddResource(e.Name(), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("register schema %q: %w", e.Name(), err)
		}
		// The compiler indexes resources only by the AddResource URL, so a
		// schema must also be registered under its declared $id for refs
		// that resolve against it to stay in memory.
		var meta struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", e.Name(), err)
		}
		if meta.ID != "" {
			if err := compiler.AddResource(meta.ID, bytes.NewReader(raw)); err != nil {
				return nil, fmt.Errorf("register schema %q under $id: %w", e.Name(), err)
			}
		}
	}
	return compiler, nil
}
