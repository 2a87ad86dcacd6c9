package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/species"
)

// Content files inside a species or shared directory.
const (
	ConfigFile    = "config.json"
	EventsFile    = "events.json"
	ParasitesFile = "parasites.json"
	InjuriesFile  = "injuries.json"
)

// ContentLoader reads species bundles and the shared library from disk:
//
//	<dataDir>/species/<id>/{config,events,parasites,injuries}.json
//	<dataDir>/shared/{events,parasites,injuries}.json
//
// Every file is decoded strictly; unknown fields are errors.
type ContentLoader struct {
	dataDir string
}

func NewContentLoader(dataDir string) *ContentLoader {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &ContentLoader{dataDir: dataDir}
}

func (l *ContentLoader) DataDir() string { return l.dataDir }

func (l *ContentLoader) ListSpecies(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.dataDir, "species"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read species directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *ContentLoader) LoadSpecies(ctx context.Context, speciesID string) (*species.Bundle, error) {
	dir := filepath.Join(l.dataDir, "species", speciesID)
	if filepath.Base(dir) != speciesID {
		return nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, speciesID)
	}

	var cfg species.Config
	if err := decodeFile(filepath.Join(dir, ConfigFile), &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, speciesID)
		}
		return nil, err
	}
	if cfg.ID == "" {
		cfg.ID = speciesID // directory name fills a missing id
	}

	content, err := loadContent(dir)
	if err != nil {
		return nil, err
	}
	return &species.Bundle{Config: &cfg, Content: content}, nil
}

func (l *ContentLoader) LoadShared(ctx context.Context) (species.Content, error) {
	return loadContent(filepath.Join(l.dataDir, "shared"))
}

// loadContent reads the optional catalog files of one directory.
func loadContent(dir string) (species.Content, error) {
	var c species.Content

	var evs []*events.Definition
	if err := decodeOptional(filepath.Join(dir, EventsFile), &evs); err != nil {
		return c, err
	}
	c.Events = evs

	var parasites []*affliction.ParasiteDefinition
	if err := decodeOptional(filepath.Join(dir, ParasitesFile), &parasites); err != nil {
		return c, err
	}
	c.Parasites = make(map[string]*affliction.ParasiteDefinition, len(parasites))
	for i, p := range parasites {
		if p == nil || p.ID == "" {
			return c, fmt.Errorf("%s: parasite %d has no id", filepath.Join(dir, ParasitesFile), i)
		}
		if _, dup := c.Parasites[p.ID]; dup {
			return c, fmt.Errorf("%s: duplicate parasite %q", filepath.Join(dir, ParasitesFile), p.ID)
		}
		c.Parasites[p.ID] = p
	}

	var injuries []*affliction.InjuryDefinition
	if err := decodeOptional(filepath.Join(dir, InjuriesFile), &injuries); err != nil {
		return c, err
	}
	c.Injuries = make(map[string]*affliction.InjuryDefinition, len(injuries))
	for i, inj := range injuries {
		if inj == nil || inj.ID == "" {
			return c, fmt.Errorf("%s: injury %d has no id", filepath.Join(dir, InjuriesFile), i)
		}
		if _, dup := c.Injuries[inj.ID]; dup {
			return c, fmt.Errorf("%s: duplicate injury %q", filepath.Join(dir, InjuriesFile), inj.ID)
		}
		c.Injuries[inj.ID] = inj
	}

	return c, nil
}

func decodeOptional(path string, v any) error {
	err := decodeFile(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", path)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", path, err)
	}
	return nil
}
