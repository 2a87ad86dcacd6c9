// Package sim is the reference turn loop. It wires the affliction, event and
// reproduction engines together for one species and applies the host
// policies the engines leave out: aging, seasonal weight, starvation and
// disease death.
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

var (
	ErrDead         = errors.New("animal is dead")
	ErrWrongSpecies = errors.New("animal belongs to another species")
)

// Simulator holds read-only content for one species and may drive any number
// of animals of that species.
type Simulator struct {
	cfg         *species.Config
	lib         *affliction.Library
	catalog     *events.Catalog
	afflictions *affliction.Engine
	events      *events.Engine
	logger      *slog.Logger
}

// New validates the bundle against the shared library and builds the engines.
func New(bundle *species.Bundle, shared species.Content) (*Simulator, error) {
	if err := bundle.Validate(shared); err != nil {
		return nil, err
	}
	cfg := bundle.Config
	lib := bundle.Library(shared)
	catalog := bundle.Catalog(shared)
	afflictions := affliction.NewEngine(lib)
	if cfg.PermanentDebuffFraction > 0 {
		afflictions.WithPermanentFraction(cfg.PermanentDebuffFraction)
	}
	return &Simulator{
		cfg:         cfg,
		lib:         lib,
		catalog:     catalog,
		afflictions: afflictions,
		events: events.NewEngine(catalog, lib).
			WithReproduction(cfg.Reproduction).
			WithWeightFloor(cfg.Weight.MinFloor),
	}, nil
}

// WithLogger sets the logger on the simulator and its engines.
// Returns the Simulator for method chaining
func (s *Simulator) WithLogger(logger *slog.Logger) *Simulator {
	s.logger = logger
	s.afflictions.WithLogger(logger)
	s.events.WithLogger(logger)
	return s
}

func (s *Simulator) Config() *species.Config         { return s.cfg }
func (s *Simulator) Library() *affliction.Library    { return s.lib }
func (s *Simulator) Catalog() *events.Catalog        { return s.catalog }
func (s *Simulator) Events() *events.Engine          { return s.events }
func (s *Simulator) Afflictions() *affliction.Engine { return s.afflictions }

// NewAnimal creates an animal at the species' starting age, weight, region
// and stat baseline, on turn 0.
func (s *Simulator) NewAnimal(sex world.Sex, seed uint64) *state.Animal {
	a := state.NewAnimal(s.cfg.ID, sex, seed)
	a.Age = s.cfg.StartingAge
	a.Weight = s.cfg.StartingWeightFor(sex)
	a.Region = s.cfg.DefaultRegion
	a.Stats = s.cfg.BaseStats
	a.Clock = world.ClockAt(0, s.turnsPerMonth())
	s.refreshPhase(a)
	return a
}

// NextClock is the default calendar for the animal's next turn, with weather
// drawn from the species' seasonal table. A nil r carries the previous
// weather over unchanged.
func (s *Simulator) NextClock(a *state.Animal, r *rng.Rand) world.Clock {
	next := a.Clock.Advance(s.turnsPerMonth())
	if r != nil {
		next = s.weather(next, r)
	}
	return next
}

func (s *Simulator) turnsPerMonth() int {
	return world.TurnsPerMonth(s.cfg.Unit())
}

// refreshPhase recomputes the age phase and its stat modifiers.
func (s *Simulator) refreshPhase(a *state.Animal) {
	a.Phase = ""
	a.PhaseModifiers = stats.Vector{}
	p, ok := s.cfg.PhaseAt(a.Age)
	if !ok {
		return
	}
	a.Phase = p.ID
	_ = a.PhaseModifiers.Apply(p.StatModifiers)
}

func (s *Simulator) check(a *state.Animal) error {
	if a.SpeciesID != s.cfg.ID {
		return fmt.Errorf("%w: %q is not %q", ErrWrongSpecies, a.SpeciesID, s.cfg.ID)
	}
	if !a.Alive {
		return fmt.Errorf("%w: %s", ErrDead, a.CauseOfDeath)
	}
	return nil
}

func (s *Simulator) worker(a *state.Animal, r *rng.Rand) *state.ConsequenceWorker {
	return state.NewConsequenceWorker(a, s.lib, s.cfg.Reproduction, r, s.logger).WithWeightFloor(s.cfg.Weight.MinFloor)
}

// Stream restores the animal's persisted random stream.
func Stream(a *state.Animal) *rng.Seeded {
	return rng.Restore(a.Seed, a.RNGPosition)
}

// Checkpoint records how far the animal's random stream has advanced.
func Checkpoint(a *state.Animal, src *rng.Seeded) {
	a.Seed = src.Seed()
	a.RNGPosition = src.Position()
}
