package handlers

import (
	"sync"

	"github.com/google/uuid"
)

// animalLocks serializes requests for the same animal. Entries are dropped
// when the last holder releases them.
type animalLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*animalLock
}

type animalLock struct {
	sync.Mutex
	refs int
}

func newAnimalLocks() *animalLocks {
	return &animalLocks{locks: make(map[uuid.UUID]*animalLock)}
}

// Lock blocks until id is free and returns the matching unlock.
func (l *animalLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &animalLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.Lock()
	return func() {
		lk.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
