package affliction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/suggest"
)

var (
	// ErrUnknownDefinition means an instance or consequence references an id
	// present in neither the species nor the shared layer.
	ErrUnknownDefinition = errors.New("unknown affliction definition")
	// ErrStageOutOfRange means an instance points past its definition's stages.
	ErrStageOutOfRange = errors.New("affliction stage out of range")
	// ErrInvalidDefinition is wrapped by every Validate problem.
	ErrInvalidDefinition = errors.New("invalid affliction definition")
)

// Layer names which table answered a lookup.
type Layer string

const (
	LayerSpecies Layer = "species"
	LayerShared  Layer = "shared"
)

// Library is a two-layer lookup: species-specific definitions first, then the
// shared library. Neither table is mutated or merged.
type Library struct {
	species Table
	shared  Table
}

func NewLibrary(species, shared Table) *Library {
	return &Library{species: species, shared: shared}
}

// Parasite resolves a parasite definition and reports which layer supplied it.
func (l *Library) Parasite(id string) (*ParasiteDefinition, Layer, bool) {
	if d, ok := l.species.Parasites[id]; ok {
		return d, LayerSpecies, true
	}
	if d, ok := l.shared.Parasites[id]; ok {
		return d, LayerShared, true
	}
	return nil, "", false
}

// Injury resolves an injury definition and reports which layer supplied it.
func (l *Library) Injury(id string) (*InjuryDefinition, Layer, bool) {
	if d, ok := l.species.Injuries[id]; ok {
		return d, LayerSpecies, true
	}
	if d, ok := l.shared.Injuries[id]; ok {
		return d, LayerShared, true
	}
	return nil, "", false
}

// MustParasite is Parasite with a descriptive error for unknown ids.
func (l *Library) MustParasite(id string) (*ParasiteDefinition, error) {
	if d, _, ok := l.Parasite(id); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: parasite %q%s", ErrUnknownDefinition, id, suggest.Hint(id, l.ParasiteIDs()))
}

// MustInjury is Injury with a descriptive error for unknown ids.
func (l *Library) MustInjury(id string) (*InjuryDefinition, error) {
	if d, _, ok := l.Injury(id); ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: injury %q%s", ErrUnknownDefinition, id, suggest.Hint(id, l.InjuryIDs()))
}

// ParasiteIDs lists every resolvable parasite id, sorted.
func (l *Library) ParasiteIDs() []string {
	seen := map[string]bool{}
	for id := range l.species.Parasites {
		seen[id] = true
	}
	for id := range l.shared.Parasites {
		seen[id] = true
	}
	return sortedKeys(seen)
}

// InjuryIDs lists every resolvable injury id, sorted.
func (l *Library) InjuryIDs() []string {
	seen := map[string]bool{}
	for id := range l.species.Injuries {
		seen[id] = true
	}
	for id := range l.shared.Injuries {
		seen[id] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate checks every definition in both layers and returns all problems
// joined together.
func (l *Library) Validate() error {
	var errs []error
	for _, layer := range []struct {
		name  Layer
		table Table
	}{{LayerSpecies, l.species}, {LayerShared, l.shared}} {
		for _, id := range sortedParasiteKeys(layer.table.Parasites) {
			for _, err := range ValidateParasite(layer.table.Parasites[id]) {
				errs = append(errs, fmt.Errorf("%s parasite %q: %w", layer.name, id, err))
			}
		}
		for _, id := range sortedInjuryKeys(layer.table.Injuries) {
			for _, err := range ValidateInjury(layer.table.Injuries[id]) {
				errs = append(errs, fmt.Errorf("%s injury %q: %w", layer.name, id, err))
			}
		}
	}
	return errors.Join(errs...)
}

func sortedParasiteKeys(m map[string]*ParasiteDefinition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedInjuryKeys(m map[string]*InjuryDefinition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func probability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidDefinition, name, p)
	}
	return nil
}

// ValidateParasite returns every problem with one parasite definition.
func ValidateParasite(d *ParasiteDefinition) []error {
	if d == nil {
		return []error{fmt.Errorf("%w: nil definition", ErrInvalidDefinition)}
	}
	var errs []error
	if len(d.Stages) == 0 {
		errs = append(errs, fmt.Errorf("%w: no stages", ErrInvalidDefinition))
	}
	for i, s := range d.Stages {
		for _, err := range []error{
			probability("progression_chance", s.ProgressionChance),
			probability("remission_chance", s.RemissionChance),
		} {
			if err != nil {
				errs = append(errs, fmt.Errorf("stage %d: %w", i, err))
			}
		}
		if s.TurnDuration.Min < 0 || s.TurnDuration.Max < s.TurnDuration.Min {
			errs = append(errs, fmt.Errorf("stage %d: %w: turn_duration {%d,%d}",
				i, ErrInvalidDefinition, s.TurnDuration.Min, s.TurnDuration.Max))
		}
		if i == d.Terminal() && s.ProgressionChance != 0 {
			errs = append(errs, fmt.Errorf("stage %d: %w: terminal stage must have progression_chance 0",
				i, ErrInvalidDefinition))
		}
	}
	return errs
}

// ValidateInjury returns every problem with one injury definition.
func ValidateInjury(d *InjuryDefinition) []error {
	if d == nil {
		return []error{fmt.Errorf("%w: nil definition", ErrInvalidDefinition)}
	}
	var errs []error
	if len(d.SeverityLevels) == 0 {
		errs = append(errs, fmt.Errorf("%w: no severity levels", ErrInvalidDefinition))
	}
	for i, s := range d.SeverityLevels {
		for _, err := range []error{
			probability("worsening_chance", s.WorseningChance),
			probability("permanent_debuff_chance", s.PermanentDebuffChance),
		} {
			if err != nil {
				errs = append(errs, fmt.Errorf("level %d: %w", i, err))
			}
		}
		if s.BaseHealingTime < 1 {
			errs = append(errs, fmt.Errorf("level %d: %w: base_healing_time must be at least 1",
				i, ErrInvalidDefinition))
		}
	}
	return errs
}
