// Package affliction models parasites and injuries: staged severity
// definitions, the active instances an animal carries, and the per-turn tick
// that moves them between stages.
package affliction

import (
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

type Severity string

const (
	Minor    Severity = "minor"
	Moderate Severity = "moderate"
	Severe   Severity = "severe"
	Critical Severity = "critical"
)

// Kind distinguishes the two affliction families.
type Kind string

const (
	KindParasite Kind = "parasite"
	KindInjury   Kind = "injury"
)

// Range is an inclusive turn range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ParasiteStage is one severity level of a parasite infection.
type ParasiteStage struct {
	Severity          Severity       `json:"severity"`
	Description       string         `json:"description,omitempty"`
	StatEffects       []stats.Effect `json:"stat_effects"`
	SecondaryEffects  []string       `json:"secondary_effects,omitempty"`
	TurnDuration      Range          `json:"turn_duration"`      // turns before a transition check is eligible
	ProgressionChance float64        `json:"progression_chance"` // toward worse
	RemissionChance   float64        `json:"remission_chance"`   // toward better
	Flag              string         `json:"flag,omitempty"`     // set while at this stage
}

// ParasiteDefinition is immutable content.
type ParasiteDefinition struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ScientificName     string          `json:"scientific_name,omitempty"`
	Description        string          `json:"description,omitempty"`
	TransmissionMethod string          `json:"transmission_method,omitempty"`
	AffectedSpecies    []string        `json:"affected_species,omitempty"` // empty means any species
	Stages             []ParasiteStage `json:"stages"`
}

// InjuryLevel is one severity level of an injury.
type InjuryLevel struct {
	Severity              Severity       `json:"severity"`
	Description           string         `json:"description,omitempty"`
	StatEffects           []stats.Effect `json:"stat_effects"`
	BaseHealingTime       int            `json:"base_healing_time"`       // rested turns to heal one level
	WorseningChance       float64        `json:"worsening_chance"`        // per non-resting turn
	PermanentDebuffChance float64        `json:"permanent_debuff_chance"` // rolled once per healing transition
	Flag                  string         `json:"flag,omitempty"`
}

// InjuryDefinition is immutable content.
type InjuryDefinition struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	BodyParts      []string      `json:"body_parts"`
	SeverityLevels []InjuryLevel `json:"severity_levels"`
}

// Table holds one layer of definitions, keyed by id.
type Table struct {
	Parasites map[string]*ParasiteDefinition `json:"parasites,omitempty"`
	Injuries  map[string]*InjuryDefinition   `json:"injuries,omitempty"`
}

// AffectsSpecies reports whether the parasite can infect the given species.
func (d *ParasiteDefinition) AffectsSpecies(speciesID string) bool {
	if len(d.AffectedSpecies) == 0 {
		return true
	}
	for _, s := range d.AffectedSpecies {
		if s == speciesID {
			return true
		}
	}
	return false
}

// Terminal returns the index of the last stage.
func (d *ParasiteDefinition) Terminal() int {
	return len(d.Stages) - 1
}

func (d *InjuryDefinition) Terminal() int {
	return len(d.SeverityLevels) - 1
}
