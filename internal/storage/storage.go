package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

var ErrSpeciesNotFound = errors.New("species not found")

// JournalEntry is one completed turn as the player saw it.
type JournalEntry struct {
	Turn       int          `json:"turn"`
	Season     world.Season `json:"season,omitempty"`
	Month      string       `json:"month,omitempty"`
	Year       int          `json:"year"`
	Lines      []string     `json:"lines"`
	Outcome    string       `json:"outcome,omitempty"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// Storage combines animal persistence (Redis) with content loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Animal operations
	SaveAnimal(ctx context.Context, a *state.Animal) error
	// LoadAnimal returns nil, nil when the animal does not exist.
	LoadAnimal(ctx context.Context, id uuid.UUID) (*state.Animal, error)
	DeleteAnimal(ctx context.Context, id uuid.UUID) error

	// Journal operations
	AppendJournal(ctx context.Context, id uuid.UUID, entries ...JournalEntry) error
	Journal(ctx context.Context, id uuid.UUID, limit int) ([]JournalEntry, error)

	// Content operations
	ListSpecies(ctx context.Context) ([]string, error)
	LoadSpecies(ctx context.Context, speciesID string) (*species.Bundle, error)
	LoadShared(ctx context.Context) (species.Content, error)
}
