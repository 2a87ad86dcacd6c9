package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
)

// MockStorage is an in-memory implementation of Storage for testing.
// Animals are stored as JSON so callers never share memory with it.
type MockStorage struct {
	mu        sync.RWMutex
	animals   map[uuid.UUID][]byte
	journals  map[uuid.UUID][]JournalEntry
	bundles   map[string]*species.Bundle
	shared    species.Content
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		animals:  make(map[uuid.UUID][]byte),
		journals: make(map[uuid.UUID][]JournalEntry),
		bundles:  make(map[string]*species.Bundle),
	}
}

// AddSpecies registers a bundle served by LoadSpecies.
func (m *MockStorage) AddSpecies(b *species.Bundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundles[b.Config.ID] = b
}

// SetShared sets the content served by LoadShared.
func (m *MockStorage) SetShared(c species.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared = c
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SaveAnimal(ctx context.Context, a *state.Animal) error {
	if a == nil {
		return errors.New("animal cannot be nil")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal animal: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.animals[a.ID] = data
	return nil
}

func (m *MockStorage) LoadAnimal(ctx context.Context, id uuid.UUID) (*state.Animal, error) {
	m.mu.RLock()
	data, ok := m.animals[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var a state.Animal
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal animal: %w", err)
	}
	return &a, nil
}

func (m *MockStorage) DeleteAnimal(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.animals, id)
	delete(m.journals, id)
	return nil
}

func (m *MockStorage) AppendJournal(ctx context.Context, id uuid.UUID, entries ...JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journals[id] = append(m.journals[id], entries...)
	return nil
}

func (m *MockStorage) Journal(ctx context.Context, id uuid.UUID, limit int) ([]JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.journals[id]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]JournalEntry, len(all))
	copy(out, all)
	return out, nil
}

func (m *MockStorage) ListSpecies(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.bundles))
	for id := range m.bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockStorage) LoadSpecies(ctx context.Context, speciesID string) (*species.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bundles[speciesID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSpeciesNotFound, speciesID)
	}
	return b, nil
}

func (m *MockStorage) LoadShared(ctx context.Context) (species.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shared, nil
}
