// Package events holds narrative event definitions and the engine that picks
// and resolves one per turn.
package events

import (
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

// Type is analytics metadata. The engine treats both types the same way.
type Type string

const (
	Active  Type = "active"
	Passive Type = "passive"
)

// StatModifier scales a death chance by a current stat value.
type StatModifier struct {
	Stat   stats.StatID `json:"stat"`
	Factor float64      `json:"factor"`
}

type DeathChance struct {
	Probability   float64        `json:"probability"`
	Cause         string         `json:"cause"`
	StatModifiers []StatModifier `json:"stat_modifiers,omitempty"`
}

// Choice is one mutually exclusive answer to an event.
type Choice struct {
	ID              string           `json:"id"`
	Label           string           `json:"label"`
	Description     string           `json:"description,omitempty"`
	NarrativeResult string           `json:"narrative_result,omitempty"`
	Style           string           `json:"style,omitempty"` // "default" or "danger"
	StatEffects     []stats.Effect   `json:"stat_effects,omitempty"`
	Consequences    consequence.List `json:"consequences,omitempty"`
	Conditions      conditions.List  `json:"conditions,omitempty"`
	DeathChance     *DeathChance     `json:"death_chance,omitempty"`
}

// SubEvent is an event fragment rolled after its parent resolves. Sub-events
// never chain further.
type SubEvent struct {
	EventID       string           `json:"event_id"`
	Chance        float64          `json:"chance"`
	Conditions    conditions.List  `json:"conditions,omitempty"`
	NarrativeText string           `json:"narrative_text"`
	Footnote      string           `json:"footnote,omitempty"`
	StatEffects   []stats.Effect   `json:"stat_effects,omitempty"`
	Consequences  consequence.List `json:"consequences,omitempty"`
}

// Definition is immutable event content.
type Definition struct {
	ID            string           `json:"id"`
	Type          Type             `json:"type,omitempty"`
	Category      string           `json:"category,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	NarrativeText string           `json:"narrative_text"`
	Footnote      string           `json:"footnote,omitempty"`
	StatEffects   []stats.Effect   `json:"stat_effects,omitempty"`
	Consequences  consequence.List `json:"consequences,omitempty"`
	Choices       []Choice         `json:"choices,omitempty"`
	SubEvents     []SubEvent       `json:"sub_events,omitempty"`
	Conditions    conditions.List  `json:"conditions,omitempty"`
	Weight        float64          `json:"weight"`
	Cooldown      int              `json:"cooldown,omitempty"`
}

// Choice returns the choice with the given id.
func (d *Definition) Choice(id string) (*Choice, bool) {
	for i := range d.Choices {
		if d.Choices[i].ID == id {
			return &d.Choices[i], true
		}
	}
	return nil, false
}

// EligibleChoices returns the choices whose conditions hold.
func (d *Definition) EligibleChoices(v conditions.View) []Choice {
	out := make([]Choice, 0, len(d.Choices))
	for _, c := range d.Choices {
		if conditions.Evaluate(c.Conditions, v) {
			out = append(out, c)
		}
	}
	return out
}

// ChoiceIDs lists choice ids in content order.
func ChoiceIDs(choices []Choice) []string {
	ids := make([]string, len(choices))
	for i, c := range choices {
		ids[i] = c.ID
	}
	return ids
}
