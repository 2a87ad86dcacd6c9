// Package rng is the only source of nondeterminism in the simulation. Every
// engine takes a *Rand built over a Source; tests use a fixed Sequence.
package rng

import (
	"math/rand/v2"
)

// Source produces uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// Rand wraps a Source with the helpers the engines need.
type Rand struct {
	src Source
}

func New(src Source) *Rand {
	return &Rand{src: src}
}

// Float returns the next uniform draw in [0, 1).
func (r *Rand) Float() float64 {
	return r.src.Float64()
}

// Chance returns true with probability p. One draw is always consumed.
func (r *Rand) Chance(p float64) bool {
	return r.src.Float64() < p
}

// IntRange returns an integer in [min, max] inclusive. When max <= min it
// returns min without drawing.
func (r *Rand) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(r.src.Float64()*float64(max-min+1))
}

// Index picks a uniform index into a collection of length n, or -1 when n is 0.
func (r *Rand) Index(n int) int {
	if n <= 0 {
		return -1
	}
	i := int(r.src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Pick returns a uniformly chosen element, or "" for an empty list.
func (r *Rand) Pick(items []string) string {
	i := r.Index(len(items))
	if i < 0 {
		return ""
	}
	return items[i]
}

// WeightedIndex selects an index with probability proportional to its weight
// using a single draw. Non-positive weights are never chosen. Returns -1 when
// no weight is positive.
func (r *Rand) WeightedIndex(weights []float64) int {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}
	roll := r.src.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return last
}

// Seeded is a PCG stream that counts its draws so it can be restored exactly.
type Seeded struct {
	seed uint64
	pos  uint64
	src  *rand.Rand
}

// NewSeeded creates a deterministic source from a seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{
		seed: seed,
		src:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Restore recreates a Seeded source and advances it to position.
func Restore(seed, position uint64) *Seeded {
	s := NewSeeded(seed)
	for s.pos < position {
		s.Float64()
	}
	return s
}

func (s *Seeded) Float64() float64 {
	s.pos++
	return s.src.Float64()
}

// Seed returns the seed the stream was created with.
func (s *Seeded) Seed() uint64 { return s.seed }

// Position returns the number of draws made since creation.
func (s *Seeded) Position() uint64 { return s.pos }

// Sequence replays a fixed list of draws, cycling when exhausted. An empty
// Sequence always returns 0.
type Sequence struct {
	values []float64
	next   int
}

func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int { return s.next }
