package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/jwebster45206/survival-engine/internal/storage"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

// buildSchemas returns one schema per content file name.
func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper:         mapType,
	}

	item := func(v any) *jsonschema.Schema {
		s := reflector.Reflect(v)
		s.Version = ""
		return s
	}
	array := func(title string, v any) *jsonschema.Schema {
		return &jsonschema.Schema{
			Version: jsonschema.Version,
			Type:    "array",
			Title:   title,
			Items:   item(v),
		}
	}

	config := reflector.Reflect(new(species.Config))
	config.Title = "Species configuration"

	return map[string]*jsonschema.Schema{
		storage.ConfigFile:    config,
		storage.EventsFile:    array("Event catalog", new(events.Definition)),
		storage.ParasitesFile: array("Parasite catalog", new(affliction.ParasiteDefinition)),
		storage.InjuriesFile:  array("Injury catalog", new(affliction.InjuryDefinition)),
	}
}

var (
	vectorType      = reflect.TypeOf(stats.Vector{})
	conditionsType  = reflect.TypeOf(conditions.List{})
	consequenceType = reflect.TypeOf(consequence.List{})
)

// mapType describes the types whose JSON form differs from their Go shape.
func mapType(t reflect.Type) *jsonschema.Schema {
	switch t {
	case vectorType:
		pattern := "^("
		for i, id := range stats.All {
			if i > 0 {
				pattern += "|"
			}
			pattern += string(id)
		}
		pattern += ")$"
		return &jsonschema.Schema{
			Type:              "object",
			Description:       "Stat values keyed by three-letter stat code",
			PatternProperties: map[string]*jsonschema.Schema{pattern: {Type: "integer"}},
		}
	case conditionsType, consequenceType:
		return &jsonschema.Schema{
			Type: "array",
			Items: &jsonschema.Schema{
				Type:        "object",
				Description: "Tagged variant; the type field selects the kind",
				Required:    []string{"type"},
			},
		}
	}
	return nil
}

// writeSchemaFiles writes <name>.schema.json files under <dataDir>/schema.
func writeSchemaFiles(dataDir string) ([]string, error) {
	outDir := filepath.Join(dataDir, "schema")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create schema directory: %w", err)
	}

	var written []string
	for _, name := range []string{storage.ConfigFile, storage.EventsFile, storage.ParasitesFile, storage.InjuriesFile} {
		schema := buildSchemas()[name]
		path := filepath.Join(outDir, name[:len(name)-len(".json")]+".schema.json")
		if err := writeSchema(path, schema); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
