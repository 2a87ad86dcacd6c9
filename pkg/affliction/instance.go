package affliction

import (
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

// Instance is one active parasite or injury carried by an animal. It holds
// only runtime counters; everything else comes from its definition.
type Instance struct {
	Kind           Kind   `json:"kind"`
	DefinitionID   string `json:"definition_id"`
	Stage          int    `json:"stage"`
	TurnsAtStage   int    `json:"turns_at_stage"`
	StageDuration  int    `json:"stage_duration"` // drawn on stage entry
	RestedTurns    int    `json:"rested_turns,omitempty"`
	BodyPart       string `json:"body_part,omitempty"`
	Resting        bool   `json:"resting,omitempty"`
	AcquiredOnTurn int    `json:"acquired_on_turn"`
}

// PermanentModifier is irreversible stat damage left behind by an injury.
// It lives on the animal, outside the affliction list.
type PermanentModifier struct {
	Source string       `json:"source"`
	Stat   stats.StatID `json:"stat"`
	Amount int          `json:"amount"`
	Turn   int          `json:"turn"`
}

// NewParasiteInstance starts an infection at the given stage.
func NewParasiteInstance(def *ParasiteDefinition, stage, turn int, r *rng.Rand) (Instance, error) {
	if stage < 0 || stage >= len(def.Stages) {
		return Instance{}, fmt.Errorf("%w: parasite %q stage %d of %d", ErrStageOutOfRange, def.ID, stage, len(def.Stages))
	}
	d := def.Stages[stage].TurnDuration
	return Instance{
		Kind:           KindParasite,
		DefinitionID:   def.ID,
		Stage:          stage,
		StageDuration:  r.IntRange(d.Min, d.Max),
		AcquiredOnTurn: turn,
	}, nil
}

// NewInjuryInstance starts an injury at the given level. An empty bodyPart is
// drawn uniformly from the definition's body parts.
func NewInjuryInstance(def *InjuryDefinition, stage int, bodyPart string, turn int, r *rng.Rand) (Instance, error) {
	if stage < 0 || stage >= len(def.SeverityLevels) {
		return Instance{}, fmt.Errorf("%w: injury %q level %d of %d", ErrStageOutOfRange, def.ID, stage, len(def.SeverityLevels))
	}
	if bodyPart == "" {
		bodyPart = r.Pick(def.BodyParts)
	}
	return Instance{
		Kind:           KindInjury,
		DefinitionID:   def.ID,
		Stage:          stage,
		StageDuration:  def.SeverityLevels[stage].BaseHealingTime,
		BodyPart:       bodyPart,
		AcquiredOnTurn: turn,
	}, nil
}

// Severity resolves the instance's current severity and display name.
func (l *Library) Severity(inst Instance) (Severity, string, error) {
	switch inst.Kind {
	case KindParasite:
		def, err := l.MustParasite(inst.DefinitionID)
		if err != nil {
			return "", "", err
		}
		if inst.Stage < 0 || inst.Stage >= len(def.Stages) {
			return "", "", fmt.Errorf("%w: parasite %q stage %d", ErrStageOutOfRange, def.ID, inst.Stage)
		}
		return def.Stages[inst.Stage].Severity, def.Name, nil
	case KindInjury:
		def, err := l.MustInjury(inst.DefinitionID)
		if err != nil {
			return "", "", err
		}
		if inst.Stage < 0 || inst.Stage >= len(def.SeverityLevels) {
			return "", "", fmt.Errorf("%w: injury %q level %d", ErrStageOutOfRange, def.ID, inst.Stage)
		}
		return def.SeverityLevels[inst.Stage].Severity, def.Name, nil
	}
	return "", "", fmt.Errorf("%w: kind %q", ErrUnknownDefinition, inst.Kind)
}
