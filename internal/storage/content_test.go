package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const testConfig = `{
	"name": "Gray Wolf",
	"default_region": "yellowstone",
	"starting_age": 12,
	"starting_weight": {"male": 90, "female": 75},
	"base_stats": {"HEA": 70},
	"weight": {"starvation_death": 45, "min_floor": 40},
	"template_vars": {"species_name": "gray wolf"}
}`

func TestContentLoader_LoadSpecies(t *testing.T) {
	dir := t.TempDir()
	wolf := filepath.Join(dir, "species", "gray-wolf")
	writeFile(t, filepath.Join(wolf, ConfigFile), testConfig)
	writeFile(t, filepath.Join(wolf, EventsFile), `[
		{"id": "howl", "type": "passive", "narrative_text": "The pack howls.", "weight": 1}
	]`)
	writeFile(t, filepath.Join(wolf, ParasitesFile), `[
		{"id": "mange-mite", "name": "Sarcoptic mange", "stages": [
			{"severity": "mild", "turn_duration": {"min": 2, "max": 4}, "stat_effects": [{"stat": "HEA", "amount": -2}]}
		]}
	]`)

	loader := NewContentLoader(dir)
	b, err := loader.LoadSpecies(context.Background(), "gray-wolf")
	require.NoError(t, err)
	assert.Equal(t, "gray-wolf", b.Config.ID, "directory name should fill a missing id")
	assert.Equal(t, "Gray Wolf", b.Config.Name)
	require.Len(t, b.Events, 1)
	assert.Equal(t, "howl", b.Events[0].ID)
	assert.Contains(t, b.Parasites, "mange-mite")
	assert.Empty(t, b.Injuries, "missing injuries file is allowed")

	ids, err := loader.ListSpecies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gray-wolf"}, ids)
}

func TestContentLoader_LoadShared(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shared", InjuriesFile), `[
		{"id": "rival-bite", "name": "Bite wound", "body_parts": ["flank"], "severity_levels": [
			{"severity": "minor", "stat_effects": [], "base_healing_time": 2}
		]}
	]`)

	c, err := NewContentLoader(dir).LoadShared(context.Background())
	require.NoError(t, err)
	assert.Contains(t, c.Injuries, "rival-bite")
	assert.Empty(t, c.Events)
}

func TestContentLoader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		id    string
		want  error
	}{
		{
			name: "missing species",
			id:   "red-fox",
			want: ErrSpeciesNotFound,
		},
		{
			name: "path escape",
			id:   "../shared",
			want: ErrSpeciesNotFound,
		},
		{
			name:  "unknown field",
			files: map[string]string{ConfigFile: `{"name": "Gray Wolf", "colour": "gray"}`},
			id:    "gray-wolf",
		},
		{
			name:  "invalid json",
			files: map[string]string{ConfigFile: `{"name": `},
			id:    "gray-wolf",
		},
		{
			name: "duplicate parasite",
			files: map[string]string{
				ConfigFile:    testConfig,
				ParasitesFile: `[{"id": "tick", "name": "Tick", "stages": []}, {"id": "tick", "name": "Tick", "stages": []}]`,
			},
			id: "gray-wolf",
		},
		{
			name: "injury without id",
			files: map[string]string{
				ConfigFile:   testConfig,
				InjuriesFile: `[{"name": "Bite", "body_parts": [], "severity_levels": []}]`,
			},
			id: "gray-wolf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, "species", "gray-wolf", name), content)
			}
			_, err := NewContentLoader(dir).LoadSpecies(context.Background(), tt.id)
			require.Error(t, err)
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestContentLoader_ListSpeciesWithoutDirectory(t *testing.T) {
	ids, err := NewContentLoader(t.TempDir()).ListSpecies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
