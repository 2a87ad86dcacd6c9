package actor

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
)

// WeightAttribute is the d20 attribute key holding a rival's body weight.
const WeightAttribute = "weight"

// RivalSpec is the serializable description of a same-species competitor
// met during mate competition.
type RivalSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Description     string         `json:"description,omitempty"`
	Health          int            `json:"health"` // current HEA
	MaxHealth       int            `json:"max_health,omitempty"`
	Weight          int            `json:"weight"`
	AC              int            `json:"ac,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
}

// Rival is the runtime representation of a competitor.
type Rival struct {
	Spec  *RivalSpec
	Actor *d20.Actor // Built at runtime from RivalSpec
}

// NewRival builds the d20 actor for a rival. HP tracks health and the weight
// is stored as an attribute.
func NewRival(spec *RivalSpec) (*Rival, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.Health <= 0 {
		return nil, fmt.Errorf("rival %q: health must be positive, got %d", spec.ID, spec.Health)
	}
	maxHP := spec.MaxHealth
	if maxHP < spec.Health {
		maxHP = spec.Health
	}
	ac := spec.AC
	if ac == 0 {
		ac = 10
	}

	attrs := map[string]int{}
	maps.Copy(attrs, spec.Attributes)
	attrs[WeightAttribute] = spec.Weight

	a, err := d20.NewActor(spec.ID).
		WithHP(maxHP).
		WithAC(ac).
		WithAttributes(attrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build rival: %w", err)
	}
	if spec.Health != maxHP {
		if err := a.SetHP(spec.Health); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return &Rival{Spec: spec, Actor: a}, nil
}

func (r *Rival) Health() int { return r.Actor.HP() }

func (r *Rival) Weight() int {
	w, _ := r.Actor.Attribute(WeightAttribute)
	return w
}

// Wound lowers the rival's health, never below zero.
func (r *Rival) Wound(n int) error {
	hp := r.Actor.HP() - n
	if hp < 0 {
		hp = 0
	}
	return r.Actor.SetHP(hp)
}

// MarshalJSON writes the spec with runtime health from the actor.
func (r *Rival) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	out := *r.Spec
	if r.Actor != nil {
		out.Health = r.Actor.HP()
		out.MaxHealth = r.Actor.MaxHP()
	}
	return json.Marshal(out)
}
