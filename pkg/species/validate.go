package species

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate returns every problem with the configuration joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, invalid("id is required"))
	}
	if c.Name == "" {
		errs = append(errs, invalid("name is required"))
	}
	switch c.TurnUnit {
	case "", UnitDay, UnitWeek, UnitMonth:
	default:
		errs = append(errs, invalid("turn_unit %q must be one of day, week, month", c.TurnUnit))
	}
	if c.DefaultRegion == "" {
		errs = append(errs, invalid("default_region is required"))
	} else if len(c.Regions) > 0 {
		if _, ok := c.Regions[c.DefaultRegion]; !ok {
			errs = append(errs, invalid("default_region %q is not listed in regions", c.DefaultRegion))
		}
	}
	if c.StartingAge < 0 {
		errs = append(errs, invalid("starting_age %v is negative", c.StartingAge))
	}
	if c.StartingWeight.Male <= 0 || c.StartingWeight.Female <= 0 {
		errs = append(errs, invalid("starting_weight must be positive for both sexes"))
	}
	if c.Weight.MinFloor < 0 || c.Weight.StarvationDeath < 0 || c.Weight.VulnerabilityThreshold < 0 {
		errs = append(errs, invalid("weight thresholds must not be negative"))
	}
	if c.DiseaseDeathChanceAtCritical < 0 || c.DiseaseDeathChanceAtCritical > 1 {
		errs = append(errs, invalid("disease_death_chance_at_critical %v outside [0,1]", c.DiseaseDeathChanceAtCritical))
	}
	if c.PermanentDebuffFraction < 0 || c.PermanentDebuffFraction > 1 {
		errs = append(errs, invalid("permanent_debuff_fraction %v outside [0,1]", c.PermanentDebuffFraction))
	}

	phases := map[string]bool{}
	for i, p := range c.AgePhases {
		if p.ID == "" {
			errs = append(errs, invalid("age phase %d has no id", i))
		} else if phases[p.ID] {
			errs = append(errs, invalid("age phase %q is defined twice", p.ID))
		}
		phases[p.ID] = true
		if p.MaxAge != nil && *p.MaxAge <= p.MinAge {
			errs = append(errs, invalid("age phase %q max_age %v is not above min_age %v", p.ID, *p.MaxAge, p.MinAge))
		}
	}

	if c.Reproduction != nil {
		for _, err := range c.Reproduction.Validate() {
			errs = append(errs, invalid("reproduction: %v", err))
		}
	}

	for season, options := range c.Weather {
		if !slices.Contains(world.Seasons, season) {
			errs = append(errs, invalid("weather season %q is unknown", season))
		}
		for i, o := range options {
			if o.Type == "" {
				errs = append(errs, invalid("weather %s entry %d has no type", season, i))
			}
			if o.Weight < 0 {
				errs = append(errs, invalid("weather %s %q weight %v is negative", season, o.Type, o.Weight))
			}
			if o.MinTurns < 0 || o.MaxTurns < o.MinTurns {
				errs = append(errs, invalid("weather %s %q turns %d..%d are not a valid range", season, o.Type, o.MinTurns, o.MaxTurns))
			}
		}
	}

	rivals := map[string]bool{}
	for i := range c.Rivals {
		spec := &c.Rivals[i]
		if spec.ID == "" || rivals[spec.ID] {
			errs = append(errs, invalid("rival %d has a missing or duplicate id %q", i, spec.ID))
		}
		rivals[spec.ID] = true
		if _, err := actor.NewRival(spec); err != nil {
			errs = append(errs, invalid("rival %q: %v", spec.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the configuration, the layered affliction library, the
// event catalog and every cross reference between them.
func (b *Bundle) Validate(shared Content) error {
	if b.Config == nil {
		return invalid("bundle has no config")
	}
	var errs []error
	if err := b.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	lib := b.Library(shared)
	if err := lib.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Catalog(shared).Validate(lib); err != nil {
		errs = append(errs, err)
	}
	if rc := b.Config.Reproduction; rc != nil {
		mc := rc.MaleCompetition
		if mc.LossInjuryID != "" {
			if def, err := lib.MustInjury(mc.LossInjuryID); err != nil {
				errs = append(errs, invalid("reproduction loss injury: %v", err))
			} else if len(mc.LossInjuryBodyParts) == 0 && len(def.BodyParts) == 0 {
				errs = append(errs, invalid("reproduction loss injury %q has no body parts", def.ID))
			}
		}
		for _, c := range rc.MatingConditions {
			if p, ok := c.(conditions.HasParasite); ok {
				if _, err := lib.MustParasite(p.ParasiteID); err != nil {
					errs = append(errs, invalid("mating conditions: %v", err))
				}
			}
		}
	}
	errs = append(errs, b.reproductionConsequences(shared)...)
	for _, d := range b.Parasites {
		if !d.AffectsSpecies(b.Config.ID) {
			errs = append(errs, fmt.Errorf("%w: species parasite %q does not list species %q", affliction.ErrInvalidDefinition, d.ID, b.Config.ID))
		}
	}
	return errors.Join(errs...)
}

// reproductionConsequences rejects reproduction payoffs that the species'
// strategy can never apply.
func (b *Bundle) reproductionConsequences(shared Content) []error {
	var strategy reproduction.Strategy
	if b.Config.Reproduction != nil {
		strategy = b.Config.Reproduction.Type
	}
	var errs []error
	check := func(eventID string, list consequence.List) {
		for _, c := range list {
			var want reproduction.Strategy
			switch c.(type) {
			case consequence.Spawn:
				want = reproduction.Semelparous
			case consequence.StartPregnancy, consequence.SireOffspring:
				want = reproduction.Iteroparous
			default:
				continue
			}
			if strategy != want {
				errs = append(errs, fmt.Errorf("%w: event %q: %s needs %s reproduction, %q is %s",
					events.ErrInvalidEvent, eventID, c.Kind(), want, b.Config.ID, strategyName(strategy)))
			}
		}
	}
	for _, d := range b.Catalog(shared).Events() {
		if d == nil {
			continue
		}
		check(d.ID, d.Consequences)
		for _, ch := range d.Choices {
			check(d.ID, ch.Consequences)
		}
		for _, sub := range d.SubEvents {
			check(d.ID, sub.Consequences)
		}
	}
	return errs
}

func strategyName(s reproduction.Strategy) string {
	if s == "" {
		return "not reproducing"
	}
	return string(s)
}
