package sim

import (
	"context"
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/narrative"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

type Outcome string

const (
	OutcomeNone         Outcome = "none"
	OutcomeDeath        Outcome = "death"
	OutcomeReproduction Outcome = "reproduction"
)

// ChoiceView is a choice as shown to the player.
type ChoiceView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Style       string `json:"style,omitempty"`
}

// Prompt is this turn's event with its narrative rendered.
type Prompt struct {
	EventID   string       `json:"event_id"`
	Category  string       `json:"category,omitempty"`
	Narrative string       `json:"narrative"`
	Footnote  string       `json:"footnote,omitempty"`
	Choices   []ChoiceView `json:"choices,omitempty"`
}

// NeedsChoice reports whether the host must supply a choice id.
func (p *Prompt) NeedsChoice() bool {
	return p != nil && len(p.Choices) > 0
}

// TurnStart is the first half of a turn: calendar, aging and affliction
// pressure, and the selected event.
type TurnStart struct {
	Turn         int                `json:"turn"`
	Clock        world.Clock        `json:"clock"`
	Phase        string             `json:"phase,omitempty"`
	Afflictions  []affliction.Event `json:"affliction_events,omitempty"`
	StatDelta    stats.Vector       `json:"stat_delta"`
	WeightChange float64            `json:"weight_change"`
	Narrative    []string           `json:"narrative,omitempty"`
	Prompt       *Prompt            `json:"prompt,omitempty"`
	Resumed      bool               `json:"resumed,omitempty"`
}

// Brood summarizes what happened to offspring this turn.
type Brood struct {
	Born        []reproduction.Offspring `json:"born,omitempty"`
	Independent []reproduction.Offspring `json:"independent,omitempty"`
	Died        []reproduction.Offspring `json:"died,omitempty"`
	Matured     []reproduction.Offspring `json:"matured,omitempty"`
}

func (b Brood) empty() bool {
	return len(b.Born)+len(b.Independent)+len(b.Died)+len(b.Matured) == 0
}

// TurnResult is the second half of a turn and the snapshot the host renders.
type TurnResult struct {
	Turn         int                         `json:"turn"`
	Clock        world.Clock                 `json:"clock"`
	Start        *TurnStart                  `json:"start,omitempty"`
	Event        *events.Resolution          `json:"event,omitempty"`
	Mating       *reproduction.MatingOutcome `json:"mating,omitempty"`
	Brood        *Brood                      `json:"brood,omitempty"`
	StatDelta    stats.Vector                `json:"stat_delta"`
	Stats        stats.Vector                `json:"stats"` // effective
	Weight       float64                     `json:"weight"`
	Flags        []string                    `json:"flags"`
	Afflictions  []affliction.Instance       `json:"afflictions"`
	Narrative    []string                    `json:"narrative,omitempty"`
	Outcome      Outcome                     `json:"outcome"`
	CauseOfDeath string                      `json:"cause_of_death,omitempty"`
	Fitness      int                         `json:"fitness"`
}

// Chooser supplies the player's decision for a prompt. It is the only point
// where a turn waits on the outside world.
type Chooser interface {
	Choose(ctx context.Context, p *Prompt) (string, error)
}

type ChooserFunc func(ctx context.Context, p *Prompt) (string, error)

func (f ChooserFunc) Choose(ctx context.Context, p *Prompt) (string, error) { return f(ctx, p) }

// BeginTurn moves the animal to clock, ages it, applies seasonal weight,
// ticks its afflictions and selects an event. If an event is already pending
// the turn is not advanced again; the pending prompt is returned with
// Resumed set. On error the animal is unchanged.
func (s *Simulator) BeginTurn(a *state.Animal, clock world.Clock, r *rng.Rand) (*TurnStart, error) {
	if err := s.check(a); err != nil {
		return nil, err
	}
	if a.Pending != nil {
		p, err := s.events.Restore(a)
		if err != nil {
			return nil, err
		}
		return &TurnStart{Turn: a.Clock.Turn, Clock: a.Clock, Phase: a.Phase, Prompt: s.render(a, p), Resumed: true}, nil
	}

	var start *TurnStart
	err := a.Atomically(func(c *state.Animal) error {
		before, weightBefore := c.Stats, c.Weight
		c.Clock = clock
		c.Age += world.MonthsPerTurn(s.cfg.Unit())
		s.refreshPhase(c)
		if dw := s.cfg.SeasonalWeight.For(clock.Season); dw != 0 {
			s.worker(c, r).ModifyWeight(dw)
		}
		s.markVulnerable(c)

		tick, err := s.afflictions.Tick(c.Afflictions, clock.Turn, r)
		if err != nil {
			return fmt.Errorf("affliction tick: %w", err)
		}
		c.ApplyAfflictionTick(tick)

		p, err := s.events.Begin(c, r)
		if err != nil {
			return err
		}

		start = &TurnStart{
			Turn:         clock.Turn,
			Clock:        clock,
			Phase:        c.Phase,
			Afflictions:  tick.Events,
			StatDelta:    c.Stats.Sub(before),
			WeightChange: c.Weight - weightBefore,
			Prompt:       s.render(c, p),
		}
		for _, ev := range tick.Events {
			start.Narrative = append(start.Narrative, describeAffliction(ev))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("Turn started",
			"animal_id", a.ID.String(),
			"turn", start.Turn,
			"affliction_events", len(start.Afflictions),
			"event", start.Prompt != nil)
	}
	return start, nil
}

// FinishTurn resolves the pending event with choiceID, runs mate competition
// when an event has triggered it, ticks reproduction and applies the host
// death policy. On error the animal is unchanged.
func (s *Simulator) FinishTurn(a *state.Animal, choiceID string, r *rng.Rand) (*TurnResult, error) {
	if err := s.check(a); err != nil {
		return nil, err
	}
	if a.Pending == nil && choiceID != "" {
		return nil, fmt.Errorf("%w: got choice %q", events.ErrNoPendingEvent, choiceID)
	}

	res := &TurnResult{Turn: a.Clock.Turn, Clock: a.Clock}
	spawnedBefore := a.Reproduction.Spawned
	err := a.Atomically(func(c *state.Animal) error {
		before := c.Stats
		vars := narrative.VarsFor(s.cfg, c)

		if c.Pending != nil {
			resolution, err := s.events.Resolve(c, choiceID, r)
			if err != nil {
				return err
			}
			res.Event = resolution
			res.Narrative = append(res.Narrative, narrative.Render(resolution.NarrativeResult, vars))
			for _, sub := range resolution.SubEvents {
				res.Narrative = append(res.Narrative, narrative.Render(sub.Narrative, vars))
			}
		}

		if c.Alive {
			if err := s.mate(c, res, r); err != nil {
				return err
			}
		}

		if rc := s.cfg.Reproduction; c.Alive && rc != nil {
			tick := reproduction.Tick(rc, c.Reproduction, c, c.Clock, r)
			c.ApplyReproductionTick(tick)
			brood := Brood{Born: tick.Born, Independent: tick.Independent, Died: tick.Died, Matured: tick.Matured}
			if !brood.empty() {
				res.Brood = &brood
				res.Narrative = append(res.Narrative, describeBrood(brood, s.cfg.TemplateVars.YoungNoun, s.cfg.TemplateVars.YoungNounPlural)...)
			}
		}

		if c.Alive {
			s.markVulnerable(c)
			s.hostDeath(c, r)
		}

		res.StatDelta = c.Stats.Sub(before)
		res.Stats = c.EffectiveStats()
		res.Weight = c.Weight
		res.Flags = c.Flags.List()
		res.Afflictions = c.Afflictions
		res.Fitness = c.Reproduction.TotalFitness
		res.Narrative = compact(res.Narrative)
		switch {
		case !c.Alive:
			res.Outcome = OutcomeDeath
			res.CauseOfDeath = c.CauseOfDeath
		case !spawnedBefore && c.Reproduction.Spawned:
			res.Outcome = OutcomeReproduction
		default:
			res.Outcome = OutcomeNone
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("Turn finished", "animal_id", a.ID.String(), "turn", res.Turn, "outcome", res.Outcome)
	}
	return res, nil
}

// Turn runs a whole turn, asking chooser when the event offers choices. If
// the chooser fails the event stays pending on the animal.
func (s *Simulator) Turn(ctx context.Context, a *state.Animal, clock world.Clock, chooser Chooser, r *rng.Rand) (*TurnResult, error) {
	start, err := s.BeginTurn(a, clock, r)
	if err != nil {
		return nil, err
	}
	choiceID := ""
	if start.Prompt.NeedsChoice() {
		if chooser == nil {
			return nil, fmt.Errorf("event %q needs a choice and no chooser was given", start.Prompt.EventID)
		}
		if choiceID, err = chooser.Choose(ctx, start.Prompt); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.FinishTurn(a, choiceID, r)
	if err != nil {
		return nil, err
	}
	res.Start = start
	return res, nil
}

// mate runs mate competition when an event has set the trigger flag. An
// animal outside the mating conditions simply loses the trigger.
func (s *Simulator) mate(a *state.Animal, res *TurnResult, r *rng.Rand) error {
	rc := s.cfg.Reproduction
	if rc == nil {
		return nil
	}
	mc := rc.MaleCompetition
	if mc.TriggerFlag == "" || !a.Flags.Has(mc.TriggerFlag) {
		return nil
	}
	if !rc.Eligible(a) {
		a.Flags.Remove(mc.TriggerFlag)
		return nil
	}

	var rival *actor.Rival
	if mc.Enabled && len(s.cfg.Rivals) > 0 {
		spec := s.cfg.Rivals[r.Index(len(s.cfg.Rivals))]
		var err error
		if rival, err = actor.NewRival(&spec); err != nil {
			return fmt.Errorf("rival %q: %w", spec.ID, err)
		}
	}
	outcome := reproduction.AttemptMating(a, rival, rc, r)
	if rival != nil && outcome.Won {
		// A beaten rival is driven off, not killed.
		outcome.RivalWound = r.IntRange(1, max(1, rival.Health()-1))
		if err := rival.Wound(outcome.RivalWound); err != nil {
			return fmt.Errorf("rival %q: %w", rival.Spec.ID, err)
		}
		outcome.RivalHealth = rival.Health()
	}
	if err := s.worker(a, r).Apply(nil, outcome.Consequences); err != nil {
		return fmt.Errorf("mating: %w", err)
	}
	res.Mating = &outcome
	res.Narrative = append(res.Narrative, describeMating(outcome, rival), describeRival(outcome, rival))
	return nil
}

// markVulnerable keeps the vulnerable flag in step with the animal's weight.
func (s *Simulator) markVulnerable(a *state.Animal) {
	w := s.cfg.Weight
	if w.VulnerabilityThreshold <= 0 {
		return
	}
	if w.Vulnerable(a.Weight) {
		a.Flags.Set(w.Flag())
	} else {
		a.Flags.Remove(w.Flag())
	}
}

// hostDeath applies starvation and, once per parasite at its terminal stage,
// the species' disease death chance.
func (s *Simulator) hostDeath(a *state.Animal, r *rng.Rand) {
	w := s.worker(a, r)
	if s.cfg.Weight.StarvationDeath > 0 && a.Weight < s.cfg.Weight.StarvationDeath {
		w.Die("Starvation")
		return
	}
	p := s.cfg.DiseaseDeathChanceAtCritical
	if p <= 0 {
		return
	}
	for _, inst := range a.Afflictions {
		if inst.Kind != affliction.KindParasite {
			continue
		}
		def, _, ok := s.lib.Parasite(inst.DefinitionID)
		if !ok || inst.Stage != def.Terminal() {
			continue
		}
		if r.Chance(p) {
			w.Die("Succumbed to " + displayName(def.Name, def.ID))
			return
		}
	}
}

func (s *Simulator) render(a *state.Animal, p *events.Prompt) *Prompt {
	if p == nil {
		return nil
	}
	vars := narrative.VarsFor(s.cfg, a)
	out := &Prompt{
		EventID:   p.Event.ID,
		Category:  p.Event.Category,
		Narrative: narrative.Render(p.Event.NarrativeText, vars),
		Footnote:  p.Event.Footnote,
	}
	for _, c := range p.Choices {
		out.Choices = append(out.Choices, ChoiceView{
			ID:          c.ID,
			Label:       narrative.Render(c.Label, vars),
			Description: narrative.Render(c.Description, vars),
			Style:       c.Style,
		})
	}
	return out
}

func compact(lines []string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
