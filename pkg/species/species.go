// Package species is the per-species configuration bundle: stat baselines,
// weight and age policy, reproduction formulas, rivals and content catalogs.
package species

import (
	"errors"

	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// ErrInvalidConfig is wrapped by every species configuration problem.
var ErrInvalidConfig = errors.New("invalid species config")

// Turn units.
const (
	UnitDay   = "day"
	UnitWeek  = "week"
	UnitMonth = "month"
)

type StartingWeight struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
}

// DefaultVulnerableFlag is set while an animal weighs less than its species'
// vulnerability threshold.
const DefaultVulnerableFlag = "underweight"

// Weight is the host's starvation policy.
type Weight struct {
	StarvationDeath        float64 `json:"starvation_death"` // death below this weight
	MinFloor               float64 `json:"min_floor"`        // modify_weight never goes lower
	VulnerabilityThreshold float64 `json:"vulnerability_threshold,omitempty"`
	VulnerableFlag         string  `json:"vulnerable_flag,omitempty"`
}

// Flag returns the flag marking a vulnerable animal.
func (w Weight) Flag() string {
	if w.VulnerableFlag == "" {
		return DefaultVulnerableFlag
	}
	return w.VulnerableFlag
}

// Vulnerable reports whether weight is below the vulnerability threshold.
// A zero threshold disables the policy.
func (w Weight) Vulnerable(weight float64) bool {
	return w.VulnerabilityThreshold > 0 && weight < w.VulnerabilityThreshold
}

// SeasonalWeight is the passive weight change per turn by season.
type SeasonalWeight struct {
	Spring float64 `json:"spring"`
	Summer float64 `json:"summer"`
	Autumn float64 `json:"autumn"`
	Winter float64 `json:"winter"`
}

func (s SeasonalWeight) For(season world.Season) float64 {
	switch season {
	case world.Spring:
		return s.Spring
	case world.Summer:
		return s.Summer
	case world.Autumn:
		return s.Autumn
	case world.Winter:
		return s.Winter
	}
	return 0
}

// WeatherOption is one entry in a season's weather table. Weight is relative
// to the other entries of the season; once drawn the weather holds for
// between MinTurns and MaxTurns turns.
type WeatherOption struct {
	Type     string  `json:"type"`
	Weight   float64 `json:"weight"`
	MinTurns int     `json:"min_turns,omitempty"`
	MaxTurns int     `json:"max_turns,omitempty"`
}

// AgePhase applies stat modifiers while MinAge <= age < MaxAge (months).
// A nil MaxAge has no upper bound.
type AgePhase struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	MinAge        float64        `json:"min_age"`
	MaxAge        *float64       `json:"max_age,omitempty"`
	StatModifiers []stats.Effect `json:"stat_modifiers,omitempty"`
}

func (p AgePhase) Contains(age float64) bool {
	return age >= p.MinAge && (p.MaxAge == nil || age < *p.MaxAge)
}

// TemplateVars are the nouns narrative templates draw on.
type TemplateVars struct {
	SpeciesName     string `json:"species_name"`
	MaleNoun        string `json:"male_noun,omitempty"`
	FemaleNoun      string `json:"female_noun,omitempty"`
	YoungNoun       string `json:"young_noun,omitempty"`
	YoungNounPlural string `json:"young_noun_plural,omitempty"`
	GroupNoun       string `json:"group_noun,omitempty"`
	Habitat         string `json:"habitat,omitempty"`
}

// Config is one species' configuration.
type Config struct {
	ID                           string                           `json:"id"`
	Name                         string                           `json:"name"`
	ScientificName               string                           `json:"scientific_name,omitempty"`
	Description                  string                           `json:"description,omitempty"`
	TurnUnit                     string                           `json:"turn_unit,omitempty"` // week when empty
	DefaultRegion                string                           `json:"default_region"`
	Regions                      map[string]string                `json:"regions,omitempty"` // id -> display name
	StartingAge                  float64                          `json:"starting_age"`      // months
	StartingWeight               StartingWeight                   `json:"starting_weight"`
	BaseStats                    stats.Vector                     `json:"base_stats"`
	Weight                       Weight                           `json:"weight"`
	SeasonalWeight               SeasonalWeight                   `json:"seasonal_weight"`
	DiseaseDeathChanceAtCritical float64                          `json:"disease_death_chance_at_critical"`
	AgePhases                    []AgePhase                       `json:"age_phases,omitempty"`
	Reproduction                 *reproduction.Config             `json:"reproduction,omitempty"`
	Rivals                       []actor.RivalSpec                `json:"rivals,omitempty"`
	Weather                      map[world.Season][]WeatherOption `json:"weather,omitempty"`
	TemplateVars                 TemplateVars                     `json:"template_vars"`
}

// Unit returns the turn unit, defaulting to week.
func (c *Config) Unit() string {
	if c.TurnUnit == "" {
		return UnitWeek
	}
	return c.TurnUnit
}

// WeatherFor returns the weather table of a season, nil when the species does
// not model weather in it.
func (c *Config) WeatherFor(season world.Season) []WeatherOption {
	return c.Weather[season]
}

// PhaseAt returns the first age phase containing age.
func (c *Config) PhaseAt(age float64) (*AgePhase, bool) {
	for i := range c.AgePhases {
		if c.AgePhases[i].Contains(age) {
			return &c.AgePhases[i], true
		}
	}
	return nil, false
}

func (c *Config) StartingWeightFor(sex world.Sex) float64 {
	if sex == world.Female {
		return c.StartingWeight.Female
	}
	return c.StartingWeight.Male
}

// RegionName resolves a region id to its display name, falling back to the id.
func (c *Config) RegionName(id string) string {
	if name, ok := c.Regions[id]; ok {
		return name
	}
	return id
}

// Content is a set of catalogs. A species bundle carries its own; the shared
// library is another Content.
type Content struct {
	Events    []*events.Definition                      `json:"events,omitempty"`
	Parasites map[string]*affliction.ParasiteDefinition `json:"parasites,omitempty"`
	Injuries  map[string]*affliction.InjuryDefinition   `json:"injuries,omitempty"`
}

func (c Content) Table() affliction.Table {
	return affliction.Table{Parasites: c.Parasites, Injuries: c.Injuries}
}

// Bundle is everything one species contributes.
type Bundle struct {
	Config *Config
	Content
}

// Library builds the layered affliction lookup for the bundle.
func (b *Bundle) Library(shared Content) *affliction.Library {
	return affliction.NewLibrary(b.Table(), shared.Table())
}

// Catalog builds the layered event catalog for the bundle.
func (b *Bundle) Catalog(shared Content) *events.Catalog {
	return events.NewCatalog(b.Events, shared.Events)
}
