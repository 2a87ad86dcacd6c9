package affliction

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

// DefaultPermanentFraction is the share of a healed level's stat effects
// that becomes permanent when the debuff roll fires.
const DefaultPermanentFraction = 0.5

type EventKind string

const (
	EventProgressed EventKind = "progressed"
	EventRemitted   EventKind = "remitted"
	EventCleared    EventKind = "cleared" // parasite remitted out of stage 0
	EventWorsened   EventKind = "worsened"
	EventHealed     EventKind = "healed"
	EventRecovered  EventKind = "recovered" // injury healed out of stage 0
	EventPermanent  EventKind = "permanent_damage"
)

// Event reports one transition observed during a tick.
type Event struct {
	Kind         EventKind `json:"kind"`
	Affliction   Kind      `json:"affliction"`
	DefinitionID string    `json:"definition_id"`
	Name         string    `json:"name"`
	BodyPart     string    `json:"body_part,omitempty"`
	From         int       `json:"from"`
	To           int       `json:"to"` // -1 when the instance was removed
	Severity     Severity  `json:"severity,omitempty"`
	Terminal     bool      `json:"terminal,omitempty"`
}

// TickResult is everything one tick produced. The input slice is never
// modified; Afflictions is the replacement list.
type TickResult struct {
	Afflictions  []Instance          `json:"afflictions"`
	Delta        stats.Vector        `json:"delta"`
	Events       []Event             `json:"events,omitempty"`
	Permanent    []PermanentModifier `json:"permanent,omitempty"`
	FlagsSet     []string            `json:"flags_set,omitempty"`
	FlagsCleared []string            `json:"flags_cleared,omitempty"`
}

// Engine advances active afflictions one turn at a time. It holds no
// per-animal state and is safe to share.
type Engine struct {
	lib               *Library
	permanentFraction float64
	logger            *slog.Logger
}

func NewEngine(lib *Library) *Engine {
	return &Engine{lib: lib, permanentFraction: DefaultPermanentFraction}
}

func (e *Engine) WithLogger(l *slog.Logger) *Engine {
	e.logger = l
	return e
}

func (e *Engine) WithPermanentFraction(f float64) *Engine {
	e.permanentFraction = f
	return e
}

func (e *Engine) Library() *Library { return e.lib }

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

// tick carries the bookkeeping shared by every instance in one call.
type tick struct {
	res     TickResult
	set     map[string]bool
	cleared map[string]bool
}

func (t *tick) setFlag(f string) {
	if f == "" {
		return
	}
	delete(t.cleared, f)
	t.set[f] = true
}

func (t *tick) clearFlag(f string) {
	if f == "" {
		return
	}
	delete(t.set, f)
	t.cleared[f] = true
}

// Tick applies one turn of pressure and transition rolls to every instance.
// Stage duration is drawn once on stage entry; a transition check runs on
// every tick once TurnsAtStage reaches it. Injuries only heal on rested
// turns and roll worsening on every turn they are not rested.
func (e *Engine) Tick(instances []Instance, turn int, r *rng.Rand) (TickResult, error) {
	t := &tick{set: map[string]bool{}, cleared: map[string]bool{}}
	t.res.Afflictions = make([]Instance, 0, len(instances))

	for _, in := range instances {
		inst := in
		var keep bool
		var err error
		switch inst.Kind {
		case KindParasite:
			keep, err = e.tickParasite(t, &inst, r)
		case KindInjury:
			keep, err = e.tickInjury(t, &inst, turn, r)
		default:
			err = fmt.Errorf("%w: affliction kind %q for %q", ErrUnknownDefinition, inst.Kind, inst.DefinitionID)
		}
		if err != nil {
			return TickResult{}, err
		}
		if keep {
			t.res.Afflictions = append(t.res.Afflictions, inst)
		}
	}

	// A flag still held by a surviving instance is not cleared.
	for _, inst := range t.res.Afflictions {
		if f := e.stageFlag(inst); f != "" {
			delete(t.cleared, f)
		}
	}
	t.res.FlagsSet = sortedKeys(t.set)
	t.res.FlagsCleared = sortedKeys(t.cleared)
	return t.res, nil
}

func (e *Engine) stageFlag(inst Instance) string {
	switch inst.Kind {
	case KindParasite:
		if d, _, ok := e.lib.Parasite(inst.DefinitionID); ok && inst.Stage >= 0 && inst.Stage < len(d.Stages) {
			return d.Stages[inst.Stage].Flag
		}
	case KindInjury:
		if d, _, ok := e.lib.Injury(inst.DefinitionID); ok && inst.Stage >= 0 && inst.Stage < len(d.SeverityLevels) {
			return d.SeverityLevels[inst.Stage].Flag
		}
	}
	return ""
}

func (e *Engine) tickParasite(t *tick, inst *Instance, r *rng.Rand) (bool, error) {
	def, err := e.lib.MustParasite(inst.DefinitionID)
	if err != nil {
		return false, err
	}
	if inst.Stage < 0 || inst.Stage >= len(def.Stages) {
		return false, fmt.Errorf("%w: parasite %q stage %d of %d", ErrStageOutOfRange, def.ID, inst.Stage, len(def.Stages))
	}
	stage := def.Stages[inst.Stage]
	if err := t.res.Delta.Apply(stage.StatEffects); err != nil {
		return false, fmt.Errorf("parasite %q: %w", def.ID, err)
	}
	t.setFlag(stage.Flag)
	inst.TurnsAtStage++
	if inst.TurnsAtStage < inst.StageDuration {
		return true, nil
	}

	from := inst.Stage
	if r.Chance(stage.ProgressionChance) && inst.Stage < def.Terminal() {
		e.enterParasiteStage(t, def, inst, inst.Stage+1, r)
		ev := Event{Kind: EventProgressed, Affliction: KindParasite, DefinitionID: def.ID, Name: def.Name,
			From: from, To: inst.Stage, Severity: def.Stages[inst.Stage].Severity, Terminal: inst.Stage == def.Terminal()}
		t.res.Events = append(t.res.Events, ev)
		e.debug("parasite progressed", "parasite", def.ID, "from", from, "to", inst.Stage)
		return true, nil
	}
	if r.Chance(stage.RemissionChance) {
		if inst.Stage == 0 {
			t.clearFlag(stage.Flag)
			t.res.Events = append(t.res.Events, Event{Kind: EventCleared, Affliction: KindParasite,
				DefinitionID: def.ID, Name: def.Name, From: from, To: -1})
			e.debug("parasite cleared", "parasite", def.ID)
			return false, nil
		}
		e.enterParasiteStage(t, def, inst, inst.Stage-1, r)
		t.res.Events = append(t.res.Events, Event{Kind: EventRemitted, Affliction: KindParasite, DefinitionID: def.ID,
			Name: def.Name, From: from, To: inst.Stage, Severity: def.Stages[inst.Stage].Severity})
		e.debug("parasite remitted", "parasite", def.ID, "from", from, "to", inst.Stage)
	}
	return true, nil
}

func (e *Engine) enterParasiteStage(t *tick, def *ParasiteDefinition, inst *Instance, stage int, r *rng.Rand) {
	t.clearFlag(def.Stages[inst.Stage].Flag)
	inst.Stage = stage
	inst.TurnsAtStage = 0
	d := def.Stages[stage].TurnDuration
	inst.StageDuration = r.IntRange(d.Min, d.Max)
	t.setFlag(def.Stages[stage].Flag)
}

func (e *Engine) tickInjury(t *tick, inst *Instance, turn int, r *rng.Rand) (bool, error) {
	def, err := e.lib.MustInjury(inst.DefinitionID)
	if err != nil {
		return false, err
	}
	if inst.Stage < 0 || inst.Stage >= len(def.SeverityLevels) {
		return false, fmt.Errorf("%w: injury %q level %d of %d", ErrStageOutOfRange, def.ID, inst.Stage, len(def.SeverityLevels))
	}
	level := def.SeverityLevels[inst.Stage]
	if err := t.res.Delta.Apply(level.StatEffects); err != nil {
		return false, fmt.Errorf("injury %q: %w", def.ID, err)
	}
	t.setFlag(level.Flag)
	inst.TurnsAtStage++
	from := inst.Stage

	if !inst.Resting {
		if r.Chance(level.WorseningChance) && inst.Stage < def.Terminal() {
			e.enterInjuryLevel(t, def, inst, inst.Stage+1)
			t.res.Events = append(t.res.Events, Event{Kind: EventWorsened, Affliction: KindInjury, DefinitionID: def.ID,
				Name: def.Name, BodyPart: inst.BodyPart, From: from, To: inst.Stage,
				Severity: def.SeverityLevels[inst.Stage].Severity, Terminal: inst.Stage == def.Terminal()})
			e.debug("injury worsened", "injury", def.ID, "body_part", inst.BodyPart, "from", from, "to", inst.Stage)
		}
		return true, nil
	}

	inst.RestedTurns++
	if inst.RestedTurns < level.BaseHealingTime {
		return true, nil
	}
	if r.Chance(level.PermanentDebuffChance) {
		source := fmt.Sprintf("%s:%s", def.ID, inst.BodyPart)
		for _, eff := range stats.Scale(level.StatEffects, e.permanentFraction) {
			t.res.Permanent = append(t.res.Permanent, PermanentModifier{Source: source, Stat: eff.Stat, Amount: eff.Amount, Turn: turn})
		}
		t.res.Events = append(t.res.Events, Event{Kind: EventPermanent, Affliction: KindInjury, DefinitionID: def.ID,
			Name: def.Name, BodyPart: inst.BodyPart, From: from, To: from, Severity: level.Severity})
		e.debug("injury left permanent damage", "injury", def.ID, "body_part", inst.BodyPart)
	}
	if inst.Stage == 0 {
		t.clearFlag(level.Flag)
		t.res.Events = append(t.res.Events, Event{Kind: EventRecovered, Affliction: KindInjury, DefinitionID: def.ID,
			Name: def.Name, BodyPart: inst.BodyPart, From: from, To: -1})
		e.debug("injury recovered", "injury", def.ID, "body_part", inst.BodyPart)
		return false, nil
	}
	e.enterInjuryLevel(t, def, inst, inst.Stage-1)
	t.res.Events = append(t.res.Events, Event{Kind: EventHealed, Affliction: KindInjury, DefinitionID: def.ID,
		Name: def.Name, BodyPart: inst.BodyPart, From: from, To: inst.Stage, Severity: def.SeverityLevels[inst.Stage].Severity})
	return true, nil
}

func (e *Engine) enterInjuryLevel(t *tick, def *InjuryDefinition, inst *Instance, stage int) {
	t.clearFlag(def.SeverityLevels[inst.Stage].Flag)
	inst.Stage = stage
	inst.TurnsAtStage = 0
	inst.RestedTurns = 0
	inst.StageDuration = def.SeverityLevels[stage].BaseHealingTime
	t.setFlag(def.SeverityLevels[stage].Flag)
}
