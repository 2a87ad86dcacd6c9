package reproduction

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

type animalView struct {
	sex       world.Sex
	weight    float64
	stats     stats.Vector
	flags     map[string]bool
	injured   bool
	parasites bool
	age       float64
}

func (a animalView) GetAge() float64             { return a.age }
func (a animalView) GetSex() world.Sex           { return a.sex }
func (a animalView) GetWeight() float64          { return a.weight }
func (a animalView) HasFlag(f string) bool       { return a.flags[f] }
func (a animalView) GetSeason() world.Season     { return world.Winter }
func (a animalView) GetWeather() string          { return "" }
func (a animalView) GetRegion() string           { return "" }
func (a animalView) GetTurn() int                { return 0 }
func (a animalView) GetStat(id stats.StatID) int { return a.stats.Get(id) }
func (a animalView) HasParasite(string) bool     { return a.parasites }
func (a animalView) HasInjury(string) bool       { return a.injured }
func (a animalView) GetSpeciesID() string        { return "gray-wolf" }

func newView(sex world.Sex, weight float64, hea, str int) animalView {
	var v stats.Vector
	_ = v.Add(stats.HEA, hea)
	_ = v.Add(stats.STR, str)
	return animalView{sex: sex, weight: weight, stats: v, flags: map[string]bool{}, age: 30}
}

func grayWolf() *Config {
	return &Config{
		Type: Iteroparous,
		MatingConditions: conditions.List{
			conditions.Season{Seasons: []world.Season{world.Winter}},
			conditions.NoFlag{Flag: "mated-this-season"},
		},
		SeasonResetMonth: "January",
		MaleCompetition: Competition{
			Enabled:              true,
			BaseWinProb:          0.50,
			MaxWinProb:           0.75,
			MinWinProb:           0.10,
			HeaFactor:            0.003,
			WeightReferencePoint: 85,
			WeightFactor:         0.001,
			LowStressThreshold:   30,
			LowStressFactor:      0.002,
			InjuryPenalty:        0.05,
			ParasitePenalty:      0.03,
			LossInjuryChance:     0.4,
			LossInjuryID:         "rival-bite",
			LossInjuryBodyParts:  []string{"flank", "muzzle", "foreleg", "hindleg"},
			TriggerFlag:          "challenging-alpha",
			ChallengeFlag:        "attempted-alpha-challenge",
			MatedFlag:            "mated-this-season",
		},
		GestationTurns: 9,
		OffspringCount: CountFormula{
			WeightReference: 70, WeightDivisor: 70,
			HeaReference: 50, HeaDivisor: 50,
			SingleThreshold: 0.20, TripletThreshold: 0.60,
			MaxOffspring: 6,
		},
		DependenceTurns: 24,
		MaturationTurns: 48,
		OffspringSurvival: Survival{
			Base: 0.97, WinterPenalty: 0.010, SummerBonus: 0.004,
			YoungPenalty: 0.006, YoungThreshold: 30, Min: 0.88, Max: 0.995,
		},
		OffspringDeathCauses: []string{"Killed by rival pack", "Died of exposure"},
		PregnantFlag:         "pregnant",
		DependentFlag:        "pups-dependent",
		IndependenceFlag:     "pups-just-independent",
	}
}

func TestWinProbability_HealthTermIsExact(t *testing.T) {
	c := Competition{BaseWinProb: 0.30, HeaFactor: 0.003, MinWinProb: 0.10, MaxWinProb: 0.75}
	got := WinProbability(c, Contender{Health: 80, HealthReference: 50})
	want := math.Max(0.10, math.Min(0.75, 0.30+0.003*float64(80-50)))
	if got != want {
		t.Errorf("WinProbability = %v, want %v", got, want)
	}
}

func TestWinProbability(t *testing.T) {
	c := grayWolf().MaleCompetition
	tests := []struct {
		name string
		in   Contender
		want float64
	}{
		{"reference animal", Contender{Health: 50, Weight: 85, Stress: 30, HealthReference: 50, WeightReference: 85}, 0.50},
		{"low stress bonus", Contender{Health: 50, Weight: 85, Stress: 10, HealthReference: 50, WeightReference: 85}, 0.54},
		{"penalties", Contender{Health: 50, Weight: 85, Stress: 30, Injured: true, Parasitized: true, HealthReference: 50, WeightReference: 85}, 0.42},
		{"clamped high", Contender{Health: 200, Weight: 85, Stress: 30, HealthReference: 50, WeightReference: 85}, 0.75},
		{"clamped low", Contender{Health: 0, Weight: 85, Stress: 30, HealthReference: 200, WeightReference: 85}, 0.10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WinProbability(c, tt.in), 1e-9)
		})
	}
}

func TestOffspringCount(t *testing.T) {
	f := grayWolf().OffspringCount
	assert.Equal(t, 1, OffspringCount(f, 40, 30), "poor condition")
	assert.Equal(t, 2, OffspringCount(f, 84, 60), "score at single threshold")
	assert.Equal(t, 6, OffspringCount(f, 140, 100), "prime condition")

	assert.Equal(t, 6, OffspringCount(f, 112, 85), "no triplet tier without a litter threshold")

	f.MaxOffspring = 1
	assert.Equal(t, 1, OffspringCount(f, 140, 100), "never exceeds max")
}

func TestOffspringCount_TripletTier(t *testing.T) {
	f := grayWolf().OffspringCount
	f.LitterThreshold = 1.0

	tests := []struct {
		name           string
		weight, health float64
		want           int
	}{
		{"single", 40, 30, 1},
		{"twins", 84, 60, 2},
		{"triplets", 112, 85, 3},
		{"litter max at the litter threshold", 140, 100, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OffspringCount(f, tt.weight, tt.health); got != tt.want {
				t.Errorf("Expected %d offspring, got %d", tt.want, got)
			}
		})
	}

	f.MaxOffspring = 2
	assert.Equal(t, 2, OffspringCount(f, 112, 85), "triplets capped at max")
}

func TestSurvivalProbability(t *testing.T) {
	s := grayWolf().OffspringSurvival
	assert.InDelta(t, 0.954, SurvivalProbability(s, world.Winter, 10), 1e-9)
	assert.InDelta(t, 0.974, SurvivalProbability(s, world.Summer, 40), 1e-9)
	assert.InDelta(t, 0.97, SurvivalProbability(s, world.Spring, 30), 1e-9)

	s.Base = 0.5
	assert.Equal(t, 0.88, SurvivalProbability(s, world.Autumn, 40))
}

func TestRollOffspringSurvival_PicksCause(t *testing.T) {
	s := grayWolf().OffspringSurvival
	causes := []string{"a", "b"}
	ok, cause := RollOffspringSurvival(s, causes, world.Spring, 40, rng.New(rng.NewSequence(0.99, 0.7)))
	assert.False(t, ok)
	assert.Equal(t, "b", cause)

	ok, cause = RollOffspringSurvival(s, causes, world.Spring, 40, rng.New(rng.NewSequence(0.5)))
	assert.True(t, ok)
	assert.Empty(t, cause)
}

func TestAttemptMating_MaleWins(t *testing.T) {
	cfg := grayWolf()
	v := newView(world.Male, 140, 100, 30)
	out := AttemptMating(v, nil, cfg, rng.New(rng.NewSequence(0.1)))

	assert.True(t, out.Contested)
	assert.True(t, out.Won)
	assert.Equal(t, 6, out.OffspringCount)
	assert.Equal(t, consequence.List{
		consequence.SireOffspring{OffspringCount: 6},
		consequence.SetFlag{Flag: "mated-this-season"},
		consequence.RemoveFlag{Flag: "challenging-alpha"},
	}, out.Consequences)
}

func TestAttemptMating_LossInjures(t *testing.T) {
	cfg := grayWolf()
	v := newView(world.Male, 85, 50, 30)
	// contest lost, injury inflicted, body part index 2, severity 1
	out := AttemptMating(v, nil, cfg, rng.New(rng.NewSequence(0.99, 0.2, 0.5, 0.7)))

	assert.False(t, out.Won)
	assert.True(t, out.Injured)
	assert.InDelta(t, 0.50, out.WinProbability, 1e-9)
	assert.Equal(t, consequence.List{
		consequence.AddInjury{InjuryID: "rival-bite", Severity: 1, BodyPart: "foreleg"},
		consequence.SetFlag{Flag: "attempted-alpha-challenge"},
		consequence.RemoveFlag{Flag: "challenging-alpha"},
	}, out.Consequences)
}

func TestAttemptMating_RivalSetsReferences(t *testing.T) {
	cfg := grayWolf()
	rival, err := actor.NewRival(&actor.RivalSpec{ID: "black-wolf", Health: 90, Weight: 60})
	require.NoError(t, err)

	v := newView(world.Male, 60, 90, 30)
	out := AttemptMating(v, rival, cfg, rng.New(rng.NewSequence(0.99, 0.99)))
	assert.Equal(t, "black-wolf", out.RivalID)
	assert.InDelta(t, 0.50, out.WinProbability, 1e-9)
}

func TestAttemptMating_UncontestedFemale(t *testing.T) {
	cfg := grayWolf()
	cfg.MaleCompetition.Enabled = false
	seq := rng.NewSequence(0.0)
	out := AttemptMating(newView(world.Female, 84, 60, 30), nil, cfg, rng.New(seq))

	assert.False(t, out.Contested)
	assert.True(t, out.Won)
	assert.Equal(t, 0, seq.Drawn())
	assert.Equal(t, consequence.StartPregnancy{OffspringCount: 2}, out.Consequences[0])
}

func TestConfig_Eligible(t *testing.T) {
	cfg := grayWolf()
	v := newView(world.Female, 40, 50, 30)
	assert.True(t, cfg.Eligible(v))
	v.flags["mated-this-season"] = true
	assert.False(t, cfg.Eligible(v))
}

func TestTick_Birth(t *testing.T) {
	cfg := grayWolf()
	st := State{Pregnancy: &Pregnancy{ConceivedOnTurn: 1, TurnsRemaining: 1, OffspringCount: 2}}
	v := newView(world.Female, 40, 50, 30)
	v.flags["pregnant"] = true

	res := Tick(cfg, st, v, world.Clock{Turn: 10, Season: world.Spring, Month: "April"}, rng.New(rng.NewSequence(0.3, 0.8)))

	require.Len(t, res.Born, 2)
	assert.Nil(t, res.State.Pregnancy)
	assert.NotNil(t, st.Pregnancy, "input state must not be modified")
	assert.Equal(t, world.Male, res.Born[0].Sex)
	assert.Equal(t, world.Female, res.Born[1].Sex)
	assert.Equal(t, "offspring-10-0", res.Born[0].ID)
	assert.Equal(t, 1, res.State.Offspring[0].AgeTurns)
	assert.Equal(t, []string{"pups-dependent"}, res.FlagsSet)
	assert.Equal(t, []string{"pregnant"}, res.FlagsCleared)
}

func TestTick_IndependenceSurvivalAndMaturation(t *testing.T) {
	cfg := grayWolf()
	st := State{Offspring: []Offspring{
		{ID: "a", Alive: true, AgeTurns: 23},                    // becomes independent
		{ID: "b", Alive: true, Independent: true, AgeTurns: 47}, // matures
		{ID: "c", Alive: true, Independent: true, AgeTurns: 35}, // dies
		{ID: "d", Alive: false, AgeTurns: 5, CauseOfDeath: "x"},
	}}
	v := newView(world.Female, 40, 50, 30)
	v.flags["pups-dependent"] = true

	// survival rolls for a, b pass; c fails and picks the second cause
	seq := rng.NewSequence(0.1, 0.1, 0.999, 0.9)
	res := Tick(cfg, st, v, world.Clock{Turn: 60, Season: world.Summer, Month: "July"}, rng.New(seq))

	require.Len(t, res.Independent, 1)
	assert.Equal(t, "a", res.Independent[0].ID)
	require.Len(t, res.Matured, 1)
	assert.Equal(t, "b", res.Matured[0].ID)
	require.Len(t, res.Died, 1)
	assert.Equal(t, "Died of exposure", res.Died[0].CauseOfDeath)
	assert.Equal(t, 5, res.State.Offspring[3].AgeTurns, "dead offspring do not age")
	assert.Equal(t, 1, res.State.TotalFitness)
	assert.Equal(t, []string{"pups-just-independent"}, res.FlagsSet)
	assert.Equal(t, []string{"pups-dependent"}, res.FlagsCleared)
}

func TestTick_SeasonResetOncePerYear(t *testing.T) {
	cfg := grayWolf()
	st := State{MatedThisSeason: true}
	v := newView(world.Male, 40, 50, 30)
	clock := world.Clock{Turn: 48, Month: "January", Year: 1, Season: world.Winter}

	res := Tick(cfg, st, v, clock, rng.New(rng.NewSequence(0.5)))
	assert.False(t, res.State.MatedThisSeason)
	assert.Equal(t, []string{"attempted-alpha-challenge", "mated-this-season"}, res.FlagsCleared)

	res.State.MatedThisSeason = true
	clock.Turn++
	again := Tick(cfg, res.State, v, clock, rng.New(rng.NewSequence(0.5)))
	assert.True(t, again.State.MatedThisSeason, "reset must fire once per year")
	assert.Empty(t, again.FlagsCleared)
}

func TestTick_SemelparousIsNoop(t *testing.T) {
	cfg := &Config{Type: Semelparous}
	seq := rng.NewSequence(0.5)
	res := Tick(cfg, State{Spawned: true, TotalFitness: 40}, newView(world.Female, 4, 50, 0), world.Clock{}, rng.New(seq))
	assert.Equal(t, 40, res.State.TotalFitness)
	assert.Equal(t, 0, seq.Drawn())
}

func TestSpawn(t *testing.T) {
	s := Spawning{BaseEggCount: 3000, EggCountHeaFactor: 20, EggCountWeightFactor: 100, EggSurvivalBase: 0.01, EggSurvivalWisFactor: 0.001}
	got := Spawn(s, 50, 40, 5)
	assert.Equal(t, 4500, got.EggCount)
	assert.Equal(t, 225, got.Survivors)

	s.EggSurvivalWisFactor = 1
	assert.Equal(t, 4500, Spawn(s, 50, 40, 5).Survivors, "survival rate is capped at 1")
}

func TestConfig_Validate(t *testing.T) {
	assert.Empty(t, grayWolf().Validate())

	cfg := grayWolf()
	cfg.MaleCompetition.MinWinProb = 0.9
	cfg.OffspringSurvival.Base = 1.2
	cfg.OffspringCount.WeightDivisor = 0
	cfg.GestationTurns = 0
	cfg.OffspringCount.LitterThreshold = 0.5
	errs := cfg.Validate()
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, "min_win_prob")
	assert.Contains(t, joined, "offspring_survival.base")
	assert.Contains(t, joined, "divisors")
	assert.Contains(t, joined, "gestation_turns")
	assert.Contains(t, joined, "litter_threshold 0.5 must exceed triplet_threshold 0.6")
}
