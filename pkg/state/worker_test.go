package state

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/reproduction"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func workerLibrary() *affliction.Library {
	return affliction.NewLibrary(affliction.Table{
		Injuries: map[string]*affliction.InjuryDefinition{
			"rival-bite": {ID: "rival-bite", Name: "Rival Bite", BodyParts: []string{"flank", "muzzle"},
				SeverityLevels: []affliction.InjuryLevel{
					{Severity: affliction.Minor, BaseHealingTime: 2},
					{Severity: affliction.Moderate, BaseHealingTime: 4, Flag: "bleeding"},
				}},
		},
	}, affliction.Table{
		Parasites: map[string]*affliction.ParasiteDefinition{
			"mange-mite": {ID: "mange-mite", AffectedSpecies: []string{"gray-wolf"}, Stages: []affliction.ParasiteStage{
				{Severity: affliction.Minor, TurnDuration: affliction.Range{Min: 2, Max: 6}, Flag: "itching"},
				{Severity: affliction.Severe, TurnDuration: affliction.Range{Min: 2, Max: 2}, Flag: "hair-loss"},
			}},
			"heartworm": {ID: "heartworm", AffectedSpecies: []string{"red-fox"}, Stages: []affliction.ParasiteStage{
				{Severity: affliction.Minor},
			}},
		},
	})
}

func wolfRepro() *reproduction.Config {
	return &reproduction.Config{
		Type:           reproduction.Iteroparous,
		GestationTurns: 9,
		OffspringCount: reproduction.CountFormula{
			WeightReference: 70, WeightDivisor: 70, HeaReference: 50, HeaDivisor: 50,
			SingleThreshold: 0.2, TripletThreshold: 0.6, MaxOffspring: 6,
		},
		MaleCompetition: reproduction.Competition{MatedFlag: "mated-this-season"},
		PregnantFlag:    "pregnant",
	}
}

func newWolf(sex world.Sex) *Animal {
	a := NewAnimal("gray-wolf", sex, 1)
	a.Weight = 40
	a.Clock.Turn = 5
	return a
}

func TestConsequenceWorker_AddParasite(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), nil, rng.New(rng.NewSequence(0.5)), noopLogger)

	require.NoError(t, w.AddParasite("mange-mite", 0))
	require.Len(t, a.Afflictions, 1)
	assert.Equal(t, affliction.Instance{Kind: affliction.KindParasite, DefinitionID: "mange-mite",
		StageDuration: 4, AcquiredOnTurn: 5}, a.Afflictions[0])
	assert.True(t, a.Flags.Has("itching"))

	require.NoError(t, w.AddParasite("mange-mite", 1), "repeat infection is a no-op")
	assert.Len(t, a.Afflictions, 1)

	require.NoError(t, w.AddParasite("heartworm", 0), "ineligible species is a no-op")
	assert.Len(t, a.Afflictions, 1)

	err := w.AddParasite("mange-mit", 0)
	assert.True(t, errors.Is(err, affliction.ErrUnknownDefinition), "got %v", err)
}

func TestConsequenceWorker_RemoveParasite(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), nil, rng.New(rng.NewSequence(0.5)), nil)
	require.NoError(t, w.AddParasite("mange-mite", 1))
	assert.True(t, a.Flags.Has("hair-loss"))

	w.RemoveParasite("mange-mite")
	assert.Empty(t, a.Afflictions)
	assert.False(t, a.Flags.Has("hair-loss"))
}

func TestConsequenceWorker_AddInjury(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), nil, rng.New(rng.NewSequence(0.7)), nil)

	require.NoError(t, w.AddInjury("rival-bite", 5, ""))
	require.Len(t, a.Afflictions, 1)
	inj := a.Afflictions[0]
	assert.Equal(t, 1, inj.Stage, "severity is capped at the last level")
	assert.Equal(t, "muzzle", inj.BodyPart)
	assert.Equal(t, 4, inj.StageDuration)
	assert.True(t, a.Flags.Has("bleeding"))

	require.NoError(t, w.AddInjury("rival-bite", 0, "flank"))
	assert.Equal(t, "flank", a.Afflictions[1].BodyPart)
}

func TestConsequenceWorker_ModifyWeightFloor(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), nil, nil, nil).WithWeightFloor(12)
	w.ModifyWeight(-10)
	assert.Equal(t, 30.0, a.Weight)
	w.ModifyWeight(-100)
	assert.Equal(t, 12.0, a.Weight)
}

func TestConsequenceWorker_StartPregnancy(t *testing.T) {
	a := newWolf(world.Female)
	a.Weight = 140
	_ = a.Stats.Add(stats.HEA, 100)
	w := NewConsequenceWorker(a, workerLibrary(), wolfRepro(), nil, nil)

	require.NoError(t, w.StartPregnancy(0))
	require.NotNil(t, a.Reproduction.Pregnancy)
	assert.Equal(t, reproduction.Pregnancy{ConceivedOnTurn: 5, TurnsRemaining: 9, OffspringCount: 6}, *a.Reproduction.Pregnancy)
	assert.True(t, a.Flags.Has("pregnant"))
	assert.True(t, a.Flags.Has("mated-this-season"))

	require.NoError(t, w.StartPregnancy(2), "already pregnant")
	assert.Equal(t, 6, a.Reproduction.Pregnancy.OffspringCount)

	m := newWolf(world.Male)
	require.NoError(t, NewConsequenceWorker(m, workerLibrary(), wolfRepro(), nil, nil).StartPregnancy(2))
	assert.Nil(t, m.Reproduction.Pregnancy)
}

func TestConsequenceWorker_SireOffspring(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), wolfRepro(), rng.New(rng.NewSequence(0.2, 0.8, 0.4)), nil)

	require.NoError(t, w.SireOffspring(3))
	require.Len(t, a.Reproduction.Offspring, 3)
	for _, o := range a.Reproduction.Offspring {
		assert.True(t, o.Independent)
		assert.True(t, o.SiredByPlayer)
	}
	assert.Equal(t, world.Male, a.Reproduction.Offspring[0].Sex)
	assert.Equal(t, world.Female, a.Reproduction.Offspring[1].Sex)
	assert.True(t, a.Reproduction.MatedThisSeason)
	assert.True(t, a.Flags.Has("mated-this-season"))
}

func TestConsequenceWorker_Spawn(t *testing.T) {
	salmon := &reproduction.Config{Type: reproduction.Semelparous, Spawning: reproduction.Spawning{
		BaseEggCount: 3000, EggSurvivalBase: 0.01, CompleteFlag: "spawning-complete",
	}}
	a := NewAnimal("chinook-salmon", world.Female, 1)
	w := NewConsequenceWorker(a, workerLibrary(), salmon, nil, nil)

	require.NoError(t, w.Spawn())
	assert.True(t, a.Reproduction.Spawned)
	assert.Equal(t, 3000, a.Reproduction.EggCount)
	assert.Equal(t, 30, a.Reproduction.EstimatedSurvivors)
	assert.Equal(t, 30, a.Reproduction.TotalFitness)
	assert.True(t, a.Flags.Has("spawning-complete"))

	wolf := newWolf(world.Female)
	require.NoError(t, NewConsequenceWorker(wolf, workerLibrary(), wolfRepro(), nil, nil).Spawn())
	assert.False(t, wolf.Reproduction.Spawned)
	assert.Zero(t, wolf.Reproduction.TotalFitness)
}

func TestConsequenceWorker_DieKeepsFirstCause(t *testing.T) {
	a := newWolf(world.Male)
	w := NewConsequenceWorker(a, workerLibrary(), nil, nil, nil)
	w.Die("Killed by a grizzly")
	w.Die("Starvation")
	assert.False(t, a.Alive)
	assert.Equal(t, "Killed by a grizzly", a.CauseOfDeath)
}

func TestConsequenceWorker_ApplyIsAtomicUnderAtomically(t *testing.T) {
	a := newWolf(world.Male)
	err := a.Atomically(func(c *Animal) error {
		w := NewConsequenceWorker(c, workerLibrary(), nil, rng.New(rng.NewSequence(0.5)), nil)
		return w.Apply(
			[]stats.Effect{{Stat: stats.TRA, Amount: 4}},
			[]consequence.Consequence{consequence.SetFlag{Flag: "wounded"}, consequence.AddParasite{ParasiteID: "unknown"}},
		)
	})
	require.Error(t, err)
	assert.Equal(t, 0, a.Stats.Get(stats.TRA))
	assert.False(t, a.Flags.Has("wounded"))
}
