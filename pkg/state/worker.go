package state

import (
	"log/slog"
	"slices"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// ConsequenceWorker applies consequences and stat effects to an animal. It
// implements consequence.Target.
type ConsequenceWorker struct {
	a           *Animal
	lib         *affliction.Library
	repro       *reproduction.Config
	r           *rng.Rand
	weightFloor float64
	logger      *slog.Logger
}

var _ consequence.Target = (*ConsequenceWorker)(nil)

// NewConsequenceWorker creates a worker for one batch of changes. repro may
// be nil for species without reproduction content.
func NewConsequenceWorker(a *Animal, lib *affliction.Library, repro *reproduction.Config, r *rng.Rand, logger *slog.Logger) *ConsequenceWorker {
	a.ensure()
	return &ConsequenceWorker{a: a, lib: lib, repro: repro, r: r, logger: logger}
}

// WithWeightFloor sets the minimum weight modify_weight can reach.
// Returns the worker for method chaining
func (w *ConsequenceWorker) WithWeightFloor(floor float64) *ConsequenceWorker {
	w.weightFloor = floor
	return w
}

func (w *ConsequenceWorker) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, append(args, "animal_id", w.a.ID.String())...)
	}
}

// Apply applies stat effects then consequences, in that order.
func (w *ConsequenceWorker) Apply(effects []stats.Effect, list []consequence.Consequence) error {
	if err := w.a.Stats.Apply(effects); err != nil {
		return err
	}
	return consequence.ApplyAll(list, w)
}

func (w *ConsequenceWorker) ModifyWeight(amount float64) {
	w.a.Weight = max(w.weightFloor, w.a.Weight+amount)
}

func (w *ConsequenceWorker) SetFlag(flag string)          { w.a.Flags.Set(flag) }
func (w *ConsequenceWorker) RemoveFlag(flag string)       { w.a.Flags.Remove(flag) }
func (w *ConsequenceWorker) ChangeRegion(regionID string) { w.a.Region = regionID }

// AddParasite infects the animal. Species outside the parasite's
// affected_species and repeat infections are skipped silently.
func (w *ConsequenceWorker) AddParasite(parasiteID string, startStage int) error {
	def, err := w.lib.MustParasite(parasiteID)
	if err != nil {
		return err
	}
	if !def.AffectsSpecies(w.a.SpeciesID) {
		w.debug("Parasite does not affect species, skipping", "parasite", parasiteID, "species", w.a.SpeciesID)
		return nil
	}
	if w.a.HasParasite(parasiteID) {
		w.debug("Already infected, skipping", "parasite", parasiteID)
		return nil
	}
	inst, err := affliction.NewParasiteInstance(def, startStage, w.a.Clock.Turn, w.r)
	if err != nil {
		return err
	}
	w.a.Afflictions = append(w.a.Afflictions, inst)
	w.a.Flags.Set(def.Stages[inst.Stage].Flag)
	return nil
}

// RemoveParasite cures every instance of the parasite and clears its stage flag.
func (w *ConsequenceWorker) RemoveParasite(parasiteID string) {
	def, _, _ := w.lib.Parasite(parasiteID)
	w.a.Afflictions = slices.DeleteFunc(w.a.Afflictions, func(inst affliction.Instance) bool {
		if inst.Kind != affliction.KindParasite || inst.DefinitionID != parasiteID {
			return false
		}
		if def != nil && inst.Stage >= 0 && inst.Stage < len(def.Stages) {
			w.a.Flags.Remove(def.Stages[inst.Stage].Flag)
		}
		return true
	})
}

// AddInjury inflicts an injury. A severity past the last level is capped at
// the last level.
func (w *ConsequenceWorker) AddInjury(injuryID string, severity int, bodyPart string) error {
	def, err := w.lib.MustInjury(injuryID)
	if err != nil {
		return err
	}
	if severity > def.Terminal() {
		severity = def.Terminal()
	}
	inst, err := affliction.NewInjuryInstance(def, severity, bodyPart, w.a.Clock.Turn, w.r)
	if err != nil {
		return err
	}
	w.a.Afflictions = append(w.a.Afflictions, inst)
	w.a.Flags.Set(def.SeverityLevels[inst.Stage].Flag)
	return nil
}

func (w *ConsequenceWorker) iteroparous() bool {
	return w.repro != nil && w.repro.Type == reproduction.Iteroparous
}

func (w *ConsequenceWorker) offspringCount(n int) int {
	if n > 0 {
		return n
	}
	return reproduction.OffspringCount(w.repro.OffspringCount, w.a.Weight, float64(w.a.GetStat(stats.HEA)))
}

// StartPregnancy only applies to a female of an iteroparous species that is
// not already pregnant.
func (w *ConsequenceWorker) StartPregnancy(offspringCount int) error {
	if !w.iteroparous() || w.a.Sex != world.Female || w.a.Reproduction.Pregnancy != nil {
		w.debug("start_pregnancy not applicable, skipping")
		return nil
	}
	w.a.Reproduction.Pregnancy = &reproduction.Pregnancy{
		ConceivedOnTurn: w.a.Clock.Turn,
		TurnsRemaining:  w.repro.GestationTurns,
		OffspringCount:  w.offspringCount(offspringCount),
	}
	w.a.Reproduction.MatedThisSeason = true
	w.a.Flags.Set(w.repro.PregnantFlag)
	w.a.Flags.Set(w.repro.MaleCompetition.MatedFlag)
	return nil
}

// SireOffspring only applies to a male of an iteroparous species. The
// offspring start independent.
func (w *ConsequenceWorker) SireOffspring(offspringCount int) error {
	if !w.iteroparous() || w.a.Sex != world.Male {
		w.debug("sire_offspring not applicable, skipping")
		return nil
	}
	rs := &w.a.Reproduction
	born := reproduction.NewOffspring(w.offspringCount(offspringCount), w.a.Clock.Turn, len(rs.Offspring), true, w.r)
	rs.Offspring = append(rs.Offspring, born...)
	rs.MatedThisSeason = true
	w.a.Flags.Set(w.repro.MaleCompetition.MatedFlag)
	return nil
}

// Spawn is the one-time semelparous payoff. Other species skip it.
func (w *ConsequenceWorker) Spawn() error {
	if w.repro == nil || w.repro.Type != reproduction.Semelparous {
		w.debug("spawn not applicable, skipping", "species", w.a.SpeciesID)
		return nil
	}
	if w.a.Reproduction.Spawned {
		return nil
	}
	eff := w.a.EffectiveStats()
	res := reproduction.Spawn(w.repro.Spawning, float64(eff.Get(stats.HEA)), float64(eff.Get(stats.WIS)), w.a.Weight)
	rs := &w.a.Reproduction
	rs.Spawned = true
	rs.EggCount = res.EggCount
	rs.EstimatedSurvivors = res.Survivors
	rs.TotalFitness = res.Survivors
	w.a.Flags.Set(w.repro.Spawning.CompleteFlag)
	return nil
}

// Die records the first cause of death.
func (w *ConsequenceWorker) Die(cause string) {
	if !w.a.Alive {
		return
	}
	w.a.Alive = false
	w.a.CauseOfDeath = cause
}
