package events

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/suggest"
)

var (
	// ErrUnknownEvent means a pending record or lookup names an event in
	// neither layer.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidEvent is wrapped by every Validate problem.
	ErrInvalidEvent = errors.New("invalid event")
)

// Catalog is a layered lookup over species events and the shared library.
// A species event hides a shared event with the same id.
type Catalog struct {
	species []*Definition
	shared  []*Definition
	byID    map[string]*Definition
	layer   map[string]affliction.Layer
	ordered []*Definition
}

func NewCatalog(species, shared []*Definition) *Catalog {
	c := &Catalog{
		species: species,
		shared:  shared,
		byID:    make(map[string]*Definition, len(species)+len(shared)),
		layer:   make(map[string]affliction.Layer, len(species)+len(shared)),
	}
	for _, d := range species {
		if d == nil {
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = d
		c.layer[d.ID] = affliction.LayerSpecies
		c.ordered = append(c.ordered, d)
	}
	for _, d := range shared {
		if d == nil {
			continue
		}
		if _, hidden := c.byID[d.ID]; hidden {
			continue
		}
		c.byID[d.ID] = d
		c.layer[d.ID] = affliction.LayerShared
		c.ordered = append(c.ordered, d)
	}
	return c
}

// Events returns every visible event: species events in content order, then
// shared events not overridden by a species event.
func (c *Catalog) Events() []*Definition {
	return c.ordered
}

// Lookup resolves an event id and reports which layer supplied it.
func (c *Catalog) Lookup(id string) (*Definition, affliction.Layer, bool) {
	d, ok := c.byID[id]
	if !ok {
		return nil, "", false
	}
	return d, c.layer[id], true
}

// MustLookup is Lookup with a descriptive error.
func (c *Catalog) MustLookup(id string) (*Definition, error) {
	if d, _, ok := c.Lookup(id); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q%s", ErrUnknownEvent, id, suggest.Hint(id, c.IDs()))
}

func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ordered))
	for i, d := range c.ordered {
		ids[i] = d.ID
	}
	return ids
}

func (c *Catalog) Len() int { return len(c.ordered) }

// Validate checks both layers, including shadowed shared events, and resolves
// every affliction reference against lib. A nil lib skips reference checks.
// Missing narrative text and no-op choices are legal content.
func (c *Catalog) Validate(lib *affliction.Library) error {
	var errs []error
	check := func(layer affliction.Layer, defs []*Definition) {
		seen := map[string]bool{}
		for i, d := range defs {
			if d == nil {
				errs = append(errs, fmt.Errorf("%w: %s event %d is null", ErrInvalidEvent, layer, i))
				continue
			}
			if seen[d.ID] {
				errs = append(errs, fmt.Errorf("%w: %s event %q is defined twice", ErrInvalidEvent, layer, d.ID))
			}
			seen[d.ID] = true
			for _, p := range validateDefinition(d, lib) {
				errs = append(errs, fmt.Errorf("%s event %q: %w", layer, d.ID, p))
			}
		}
	}
	check(affliction.LayerSpecies, c.species)
	check(affliction.LayerShared, c.shared)
	return errors.Join(errs...)
}

func problem(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}

func validateDefinition(d *Definition, lib *affliction.Library) []error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, problem("id is required"))
	}
	if d.Type != "" && d.Type != Active && d.Type != Passive {
		errs = append(errs, problem("type %q must be %q or %q", d.Type, Active, Passive))
	}
	if d.Weight < 0 {
		errs = append(errs, problem("weight %v is negative", d.Weight))
	}
	if d.Cooldown < 0 {
		errs = append(errs, problem("cooldown %d is negative", d.Cooldown))
	}
	errs = append(errs, references(lib, d.Conditions, d.Consequences)...)

	choiceIDs := map[string]bool{}
	for i, ch := range d.Choices {
		if ch.ID == "" {
			errs = append(errs, problem("choice %d has no id", i))
		} else if choiceIDs[ch.ID] {
			errs = append(errs, problem("choice %q is defined twice", ch.ID))
		}
		choiceIDs[ch.ID] = true
		if dc := ch.DeathChance; dc != nil {
			if dc.Probability < 0 || dc.Probability > 1 {
				errs = append(errs, problem("choice %q death probability %v is outside [0,1]", ch.ID, dc.Probability))
			}
			if dc.Cause == "" {
				errs = append(errs, problem("choice %q death chance has no cause", ch.ID))
			}
		}
		for _, p := range references(lib, ch.Conditions, ch.Consequences) {
			errs = append(errs, fmt.Errorf("choice %q: %w", ch.ID, p))
		}
	}

	for i, sub := range d.SubEvents {
		if sub.EventID == "" {
			errs = append(errs, problem("sub-event %d has no event_id", i))
		}
		if sub.Chance < 0 || sub.Chance > 1 {
			errs = append(errs, problem("sub-event %q chance %v is outside [0,1]", sub.EventID, sub.Chance))
		}
		for _, p := range references(lib, sub.Conditions, sub.Consequences) {
			errs = append(errs, fmt.Errorf("sub-event %q: %w", sub.EventID, p))
		}
	}
	return errs
}

// references resolves every parasite and injury id named by conditions and
// consequences.
func references(lib *affliction.Library, conds conditions.List, cons consequence.List) []error {
	if lib == nil {
		return nil
	}
	var errs []error
	parasite := func(id string) *affliction.ParasiteDefinition {
		def, err := lib.MustParasite(id)
		if err != nil {
			errs = append(errs, err)
		}
		return def
	}
	injury := func(id string) {
		if id == "" {
			return
		}
		if _, err := lib.MustInjury(id); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range conds {
		switch c := c.(type) {
		case conditions.HasParasite:
			parasite(c.ParasiteID)
		case conditions.NoParasite:
			parasite(c.ParasiteID)
		case conditions.HasInjury:
			injury(c.InjuryID)
		case conditions.NoInjury:
			injury(c.InjuryID)
		}
	}
	for _, c := range cons {
		switch c := c.(type) {
		case consequence.AddParasite:
			def := parasite(c.ParasiteID)
			if def != nil && (c.StartStage < 0 || c.StartStage >= len(def.Stages)) {
				errs = append(errs, problem("add_parasite %q start_stage %d is outside its %d stages",
					c.ParasiteID, c.StartStage, len(def.Stages)))
			}
		case consequence.RemoveParasite:
			parasite(c.ParasiteID)
		case consequence.AddInjury:
			injury(c.InjuryID)
			if c.InjuryID == "" {
				errs = append(errs, problem("add_injury has no injury_id"))
			}
			if c.Severity < 0 {
				errs = append(errs, problem("add_injury %q severity %d is negative", c.InjuryID, c.Severity))
			}
		}
	}
	return errs
}
