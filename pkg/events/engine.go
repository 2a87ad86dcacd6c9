package events

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/suggest"
)

var (
	ErrUnknownChoice   = errors.New("unknown choice")
	ErrNoPendingEvent  = errors.New("no event is awaiting resolution")
	ErrEventInProgress = errors.New("an event is already awaiting resolution")
)

// Prompt is a selected event together with the choices the animal may pick.
// An empty Choices list means the event resolves without input.
type Prompt struct {
	Event   *Definition `json:"event"`
	Choices []Choice    `json:"choices"`
}

// DeathRoll reports a death-chance check.
type DeathRoll struct {
	Probability float64 `json:"probability"`
	Survived    bool    `json:"survived"`
}

// FiredSubEvent is a sub-event whose chance succeeded.
type FiredSubEvent struct {
	EventID   string `json:"event_id"`
	Narrative string `json:"narrative"`
	Footnote  string `json:"footnote,omitempty"`
}

// Resolution is everything observable about one resolved event.
type Resolution struct {
	EventID         string          `json:"event_id"`
	Narrative       string          `json:"narrative"`
	Footnote        string          `json:"footnote,omitempty"`
	ChoiceID        string          `json:"choice_id,omitempty"`
	ChoiceLabel     string          `json:"choice_label,omitempty"`
	NarrativeResult string          `json:"narrative_result,omitempty"`
	DeathRoll       *DeathRoll      `json:"death_roll,omitempty"`
	SubEvents       []FiredSubEvent `json:"sub_events,omitempty"`
	Delta           stats.Vector    `json:"delta"`
	Died            bool            `json:"died"`
	CauseOfDeath    string          `json:"cause_of_death,omitempty"`
}

// Engine selects and resolves events against an animal. It holds only
// read-only content and may be shared across animals.
type Engine struct {
	catalog     *Catalog
	lib         *affliction.Library
	repro       *reproduction.Config
	weightFloor float64
	logger      *slog.Logger
}

func NewEngine(catalog *Catalog, lib *affliction.Library) *Engine {
	return &Engine{catalog: catalog, lib: lib}
}

// WithReproduction sets the species reproduction config used by
// start_pregnancy, sire_offspring and spawn.
// Returns the Engine for method chaining
func (e *Engine) WithReproduction(cfg *reproduction.Config) *Engine {
	e.repro = cfg
	return e
}

// WithWeightFloor sets the lowest weight modify_weight can reach.
func (e *Engine) WithWeightFloor(floor float64) *Engine {
	e.weightFloor = floor
	return e
}

func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// Pool returns the events whose conditions hold and whose cooldown has
// elapsed, in catalog order.
func (e *Engine) Pool(a *state.Animal) []*Definition {
	var pool []*Definition
	for _, d := range e.catalog.Events() {
		if !a.Cooldowns.Ready(d.ID, d.Cooldown, a.Clock.Turn) {
			continue
		}
		if !conditions.Evaluate(d.Conditions, a) {
			continue
		}
		pool = append(pool, d)
	}
	return pool
}

// Select draws one event with probability proportional to weight. An empty
// pool, or one with no positive weight, selects nothing and draws nothing.
func (e *Engine) Select(pool []*Definition, r *rng.Rand) *Definition {
	if len(pool) == 0 {
		return nil
	}
	weights := make([]float64, len(pool))
	for i, d := range pool {
		weights[i] = d.Weight
	}
	i := r.WeightedIndex(weights)
	if i < 0 {
		return nil
	}
	return pool[i]
}

// Begin selects this turn's event, records it in the cooldown ledger and
// leaves it pending on the animal. It returns nil when nothing happens.
func (e *Engine) Begin(a *state.Animal, r *rng.Rand) (*Prompt, error) {
	if a.Pending != nil {
		return nil, fmt.Errorf("%w: %q", ErrEventInProgress, a.Pending.EventID)
	}
	pool := e.Pool(a)
	d := e.Select(pool, r)
	if d == nil {
		if e.logger != nil {
			e.logger.Debug("No event this turn", "animal_id", a.ID.String(), "pool_size", len(pool))
		}
		return nil, nil
	}
	a.RecordEvent(d.ID, a.Clock.Turn)
	choices := d.EligibleChoices(a)
	a.Pending = &state.Pending{EventID: d.ID, Turn: a.Clock.Turn, ChoiceIDs: ChoiceIDs(choices)}
	if e.logger != nil {
		e.logger.Debug("Event selected",
			"animal_id", a.ID.String(),
			"event_id", d.ID,
			"pool_size", len(pool),
			"choices", len(choices))
	}
	return &Prompt{Event: d, Choices: choices}, nil
}

// Restore rebuilds the prompt for an animal's pending event, for hosts that
// persist an animal between Begin and Resolve.
func (e *Engine) Restore(a *state.Animal) (*Prompt, error) {
	if a.Pending == nil {
		return nil, ErrNoPendingEvent
	}
	d, err := e.catalog.MustLookup(a.Pending.EventID)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(a.Pending.ChoiceIDs))
	for _, id := range a.Pending.ChoiceIDs {
		ch, ok := d.Choice(id)
		if !ok {
			return nil, fmt.Errorf("%w: event %q has no choice %q", ErrUnknownChoice, d.ID, id)
		}
		choices = append(choices, *ch)
	}
	return &Prompt{Event: d, Choices: choices}, nil
}

// Resolve applies the pending event. The event's own effects and
// consequences apply first, then the chosen choice's. A choice's death chance
// is rolled against the stats the animal had when resolution started.
// Sub-events roll last and are skipped once the animal is dead. choiceID must
// name one of the pending choices, or be empty when none were offered.
//
// Resolution is atomic: on error the animal is left exactly as it was,
// pending event included.
func (e *Engine) Resolve(a *state.Animal, choiceID string, r *rng.Rand) (*Resolution, error) {
	if a.Pending == nil {
		return nil, ErrNoPendingEvent
	}
	d, err := e.catalog.MustLookup(a.Pending.EventID)
	if err != nil {
		return nil, err
	}
	choice, err := pendingChoice(d, a.Pending, choiceID)
	if err != nil {
		return nil, err
	}

	var res *Resolution
	err = a.Atomically(func(c *state.Animal) error {
		var err error
		res, err = e.resolve(c, d, choice, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func pendingChoice(d *Definition, p *state.Pending, choiceID string) (*Choice, error) {
	if len(p.ChoiceIDs) == 0 {
		if choiceID != "" {
			return nil, fmt.Errorf("%w: event %q offers no choices, got %q", ErrUnknownChoice, d.ID, choiceID)
		}
		return nil, nil
	}
	if !slices.Contains(p.ChoiceIDs, choiceID) {
		return nil, fmt.Errorf("%w: event %q has no choice %q%s",
			ErrUnknownChoice, d.ID, choiceID, suggest.Hint(choiceID, p.ChoiceIDs))
	}
	ch, ok := d.Choice(choiceID)
	if !ok {
		return nil, fmt.Errorf("%w: event %q has no choice %q", ErrUnknownChoice, d.ID, choiceID)
	}
	return ch, nil
}

func (e *Engine) resolve(a *state.Animal, d *Definition, choice *Choice, r *rng.Rand) (*Resolution, error) {
	before := a.Stats
	snapshot := a.EffectiveStats()
	res := &Resolution{EventID: d.ID, Narrative: d.NarrativeText, Footnote: d.Footnote}

	if err := e.worker(a, r).Apply(d.StatEffects, d.Consequences); err != nil {
		return nil, fmt.Errorf("event %q: %w", d.ID, err)
	}

	if choice != nil {
		res.ChoiceID = choice.ID
		res.ChoiceLabel = choice.Label
		res.NarrativeResult = choice.NarrativeResult
		if err := e.worker(a, r).Apply(choice.StatEffects, choice.Consequences); err != nil {
			return nil, fmt.Errorf("event %q choice %q: %w", d.ID, choice.ID, err)
		}
		if dc := choice.DeathChance; dc != nil && a.Alive {
			p := DeathProbability(*dc, snapshot)
			died := r.Chance(p)
			res.DeathRoll = &DeathRoll{Probability: p, Survived: !died}
			if died {
				e.worker(a, r).Die(dc.Cause)
			}
			if e.logger != nil {
				e.logger.Debug("Death roll", "animal_id", a.ID.String(), "event_id", d.ID, "probability", p, "died", died)
			}
		}
	}

	for _, sub := range d.SubEvents {
		if !a.Alive {
			break
		}
		if !conditions.Evaluate(sub.Conditions, a) || !r.Chance(sub.Chance) {
			continue
		}
		if err := e.worker(a, r).Apply(sub.StatEffects, sub.Consequences); err != nil {
			return nil, fmt.Errorf("event %q sub-event %q: %w", d.ID, sub.EventID, err)
		}
		a.RecordEvent(sub.EventID, a.Clock.Turn)
		res.SubEvents = append(res.SubEvents, FiredSubEvent{EventID: sub.EventID, Narrative: sub.NarrativeText, Footnote: sub.Footnote})
	}

	a.Pending = nil
	res.Delta = a.Stats.Sub(before)
	res.Died = !a.Alive
	res.CauseOfDeath = a.CauseOfDeath
	return res, nil
}

func (e *Engine) worker(a *state.Animal, r *rng.Rand) *state.ConsequenceWorker {
	return state.NewConsequenceWorker(a, e.lib, e.repro, r, e.logger).WithWeightFloor(e.weightFloor)
}

// DeathProbability is probability × (1 + Σ factor × stat), clamped to [0,1].
func DeathProbability(dc DeathChance, s stats.Vector) float64 {
	scale := 1.0
	for _, m := range dc.StatModifiers {
		scale += m.Factor * float64(s.Get(m.Stat))
	}
	return min(max(dc.Probability*scale, 0), 1)
}
