package state

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

var (
	ErrNoSuchAffliction = errors.New("no such affliction")
	ErrNotAnInjury      = errors.New("not an injury")
)

// Pending records an event that is waiting on a choice. Only ids are kept;
// the event engine resolves them against its catalog.
type Pending struct {
	EventID   string   `json:"event_id"`
	Turn      int      `json:"turn"`
	ChoiceIDs []string `json:"choice_ids"`
}

// Animal is the full simulation context for one animal's life. It is owned
// by the turn loop; engines receive it per call and never retain it.
type Animal struct {
	ID             uuid.UUID                      `json:"id"`
	SpeciesID      string                         `json:"species_id"`
	Name           string                         `json:"name,omitempty"`
	Sex            world.Sex                      `json:"sex"`
	Age            float64                        `json:"age"` // months
	Weight         float64                        `json:"weight"`
	Region         string                         `json:"region,omitempty"`
	Clock          world.Clock                    `json:"clock"`
	Stats          stats.Vector                   `json:"stats"`
	Phase          string                         `json:"phase,omitempty"`
	PhaseModifiers stats.Vector                   `json:"phase_modifiers"`
	Permanent      []affliction.PermanentModifier `json:"permanent,omitempty"`
	Flags          Flags                          `json:"flags"`
	Afflictions    []affliction.Instance          `json:"afflictions"`
	Cooldowns      Ledger                         `json:"cooldowns"`
	Reproduction   reproduction.State             `json:"reproduction"`
	Alive          bool                           `json:"alive"`
	CauseOfDeath   string                         `json:"cause_of_death,omitempty"`
	Pending        *Pending                       `json:"pending,omitempty"`
	Seed           uint64                         `json:"seed"`
	RNGPosition    uint64                         `json:"rng_position"`
}

func NewAnimal(speciesID string, sex world.Sex, seed uint64) *Animal {
	return &Animal{
		ID:          uuid.New(),
		SpeciesID:   speciesID,
		Sex:         sex,
		Flags:       Flags{},
		Afflictions: make([]affliction.Instance, 0),
		Cooldowns:   Ledger{},
		Alive:       true,
		Seed:        seed,
	}
}

// Clone returns a deep copy. Consequences are applied to a clone and copied
// back only when every one of them succeeds.
func (a *Animal) Clone() *Animal {
	out := *a
	out.Flags = a.Flags.Clone()
	out.Cooldowns = a.Cooldowns.Clone()
	out.Afflictions = append(make([]affliction.Instance, 0, len(a.Afflictions)), a.Afflictions...)
	out.Permanent = append([]affliction.PermanentModifier(nil), a.Permanent...)
	out.Reproduction = a.Reproduction.Clone()
	if a.Pending != nil {
		p := *a.Pending
		p.ChoiceIDs = append([]string(nil), a.Pending.ChoiceIDs...)
		out.Pending = &p
	}
	return &out
}

// PermanentVector sums every standing modifier.
func (a *Animal) PermanentVector() stats.Vector {
	var v stats.Vector
	for _, m := range a.Permanent {
		_ = v.Add(m.Stat, m.Amount)
	}
	return v
}

// EffectiveStats is base stats plus permanent damage plus the current age
// phase modifiers.
func (a *Animal) EffectiveStats() stats.Vector {
	return a.Stats.Plus(a.PermanentVector()).Plus(a.PhaseModifiers)
}

// ensure allocates maps left nil by a zero value or a sparse document.
func (a *Animal) ensure() {
	if a.Flags == nil {
		a.Flags = Flags{}
	}
	if a.Cooldowns == nil {
		a.Cooldowns = Ledger{}
	}
}

// RecordEvent stores the turn an event fired in the cooldown ledger.
func (a *Animal) RecordEvent(eventID string, turn int) {
	a.ensure()
	a.Cooldowns.Record(eventID, turn)
}

// ApplyAfflictionTick folds one affliction tick into the animal.
func (a *Animal) ApplyAfflictionTick(res affliction.TickResult) {
	a.ensure()
	a.Afflictions = res.Afflictions
	a.Stats = a.Stats.Plus(res.Delta)
	a.Permanent = append(a.Permanent, res.Permanent...)
	for _, f := range res.FlagsSet {
		a.Flags.Set(f)
	}
	for _, f := range res.FlagsCleared {
		a.Flags.Remove(f)
	}
}

// ApplyReproductionTick folds one reproduction tick into the animal.
func (a *Animal) ApplyReproductionTick(res reproduction.TickResult) {
	a.ensure()
	a.Reproduction = res.State
	for _, f := range res.FlagsSet {
		a.Flags.Set(f)
	}
	for _, f := range res.FlagsCleared {
		a.Flags.Remove(f)
	}
}

// conditions.View

func (a *Animal) GetAge() float64          { return a.Age }
func (a *Animal) GetSex() world.Sex        { return a.Sex }
func (a *Animal) GetWeight() float64       { return a.Weight }
func (a *Animal) HasFlag(flag string) bool { return a.Flags.Has(flag) }
func (a *Animal) GetSeason() world.Season  { return a.Clock.Season }
func (a *Animal) GetWeather() string       { return a.Clock.Weather }
func (a *Animal) GetRegion() string        { return a.Region }
func (a *Animal) GetTurn() int             { return a.Clock.Turn }
func (a *Animal) GetSpeciesID() string     { return a.SpeciesID }

func (a *Animal) GetStat(id stats.StatID) int {
	return a.EffectiveStats().Get(id)
}

// HasParasite with an empty id matches any parasite.
func (a *Animal) HasParasite(id string) bool {
	return a.hasAffliction(affliction.KindParasite, id)
}

// HasInjury with an empty id matches any injury.
func (a *Animal) HasInjury(id string) bool {
	return a.hasAffliction(affliction.KindInjury, id)
}

func (a *Animal) hasAffliction(kind affliction.Kind, id string) bool {
	for _, inst := range a.Afflictions {
		if inst.Kind == kind && (id == "" || inst.DefinitionID == id) {
			return true
		}
	}
	return false
}

// Atomically runs fn against a copy and keeps the copy only when fn succeeds.
func (a *Animal) Atomically(fn func(c *Animal) error) error {
	c := a.Clone()
	if err := fn(c); err != nil {
		return err
	}
	*a = *c
	return nil
}

// SetResting marks the injury at index (into Afflictions) as resting or not.
func (a *Animal) SetResting(index int, resting bool) error {
	if index < 0 || index >= len(a.Afflictions) {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchAffliction, index, len(a.Afflictions))
	}
	if a.Afflictions[index].Kind != affliction.KindInjury {
		return fmt.Errorf("%w: affliction %d is a %s", ErrNotAnInjury, index, a.Afflictions[index].Kind)
	}
	a.Afflictions[index].Resting = resting
	return nil
}

// RestAll sets every injury's resting flag and returns how many changed.
func (a *Animal) RestAll(resting bool) int {
	n := 0
	for i := range a.Afflictions {
		if a.Afflictions[i].Kind == affliction.KindInjury && a.Afflictions[i].Resting != resting {
			a.Afflictions[i].Resting = resting
			n++
		}
	}
	return n
}
