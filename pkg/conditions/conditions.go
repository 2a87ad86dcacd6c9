// Package conditions evaluates eligibility predicates against a read-only
// snapshot of an animal and its surroundings. Events, choices, sub-events and
// reproduction all share this vocabulary.
package conditions

import (
	"errors"

	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// ErrUnknownKind is returned when content names a condition type the
// evaluator does not know.
var ErrUnknownKind = errors.New("unknown condition type")

// Kind is the JSON "type" discriminator.
type Kind string

const (
	KindHasFlag     Kind = "has_flag"
	KindNoFlag      Kind = "no_flag"
	KindSex         Kind = "sex"
	KindAgeRange    Kind = "age_range"
	KindSeason      Kind = "season"
	KindWeather     Kind = "weather"
	KindRegion      Kind = "region"
	KindSpecies     Kind = "species"
	KindTurnAbove   Kind = "turn_above"
	KindWeightAbove Kind = "weight_above"
	KindWeightBelow Kind = "weight_below"
	KindStatAbove   Kind = "stat_above"
	KindStatBelow   Kind = "stat_below"
	KindHasParasite Kind = "has_parasite"
	KindNoParasite  Kind = "no_parasite"
	KindHasInjury   Kind = "has_injury"
	KindNoInjury    Kind = "no_injury"
)

// View provides the minimal interface needed to evaluate conditions.
// This avoids import cycles with the state package.
type View interface {
	GetAge() float64 // months
	GetSex() world.Sex
	GetWeight() float64
	HasFlag(flag string) bool
	GetSeason() world.Season
	GetWeather() string
	GetRegion() string
	GetTurn() int
	GetStat(id stats.StatID) int // effective value
	HasParasite(id string) bool
	HasInjury(id string) bool // "" matches any injury
	GetSpeciesID() string
}

// Condition is a closed set of predicates; only this package can add kinds.
type Condition interface {
	Kind() Kind
	Holds(v View) bool
	sealed()
}

// Evaluate reports whether every condition holds. An empty list holds.
func Evaluate(list []Condition, v View) bool {
	for _, c := range list {
		if !c.Holds(v) {
			return false
		}
	}
	return true
}
