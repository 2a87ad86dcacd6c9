package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/survival-engine/internal/storage"
	"github.com/jwebster45206/survival-engine/pkg/sim"
	"github.com/jwebster45206/survival-engine/pkg/species"
)

// Simulators builds one validated simulator per species on first use and
// keeps it for the life of the process.
type Simulators struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  *slog.Logger
	shared  *species.Content
	sims    map[string]*sim.Simulator
}

func NewSimulators(store storage.Storage, logger *slog.Logger) *Simulators {
	return &Simulators{
		storage: store,
		logger:  logger,
		sims:    make(map[string]*sim.Simulator),
	}
}

func (s *Simulators) Get(ctx context.Context, speciesID string) (*sim.Simulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sm, ok := s.sims[speciesID]; ok {
		return sm, nil
	}

	if s.shared == nil {
		shared, err := s.storage.LoadShared(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load shared content: %w", err)
		}
		s.shared = &shared
	}

	bundle, err := s.storage.LoadSpecies(ctx, speciesID)
	if err != nil {
		return nil, err
	}
	sm, err := sim.New(bundle, *s.shared)
	if err != nil {
		s.logger.Error("Species content failed validation", "species", speciesID, "error", err)
		return nil, fmt.Errorf("species %q: %w", speciesID, err)
	}
	sm = sm.WithLogger(s.logger.With("species", speciesID))

	s.sims[speciesID] = sm
	return sm, nil
}
