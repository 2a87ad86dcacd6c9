package reproduction

import (
	"math"

	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// DefaultHealthReference is used when neither the config nor a rival supplies
// a health reference.
const DefaultHealthReference = 50

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Contender is everything the win formula reads about one contest.
type Contender struct {
	Health          float64
	Weight          float64
	Stress          float64
	Injured         bool
	Parasitized     bool
	HealthReference float64
	WeightReference float64
}

// WinProbability is
//
//	clamp(base + heaFactor*(health-ref) + weightFactor*(weight-weightRef)
//	      + lowStressBonus - injuryPenalty*injured - parasitePenalty*parasitized, min, max)
//
// where lowStressBonus is lowStressFactor*(threshold-stress) when stress is
// under the threshold.
func WinProbability(c Competition, in Contender) float64 {
	p := c.BaseWinProb
	p += c.HeaFactor * (in.Health - in.HealthReference)
	p += c.WeightFactor * (in.Weight - in.WeightReference)
	if in.Stress < c.LowStressThreshold {
		p += c.LowStressFactor * (c.LowStressThreshold - in.Stress)
	}
	if in.Injured {
		p -= c.InjuryPenalty
	}
	if in.Parasitized {
		p -= c.ParasitePenalty
	}
	return clamp(p, c.MinWinProb, c.MaxWinProb)
}

// Score is the averaged weight and health ratio the count thresholds apply to.
func (f CountFormula) Score(weight, health float64) float64 {
	return ((weight-f.WeightReference)/f.WeightDivisor + (health-f.HeaReference)/f.HeaDivisor) / 2
}

// OffspringCount maps a score below SingleThreshold to one offspring, below
// TripletThreshold to twins, below LitterThreshold (when set) to triplets and
// anything else to the litter maximum. The result is always in
// [1, MaxOffspring].
func OffspringCount(f CountFormula, weight, health float64) int {
	maxN := max(f.MaxOffspring, 1)
	score := f.Score(weight, health)
	n := maxN
	switch {
	case score < f.SingleThreshold:
		n = 1
	case score < f.TripletThreshold:
		n = 2
	case f.LitterThreshold > f.TripletThreshold && score < f.LitterThreshold:
		n = 3
	}
	return min(n, maxN)
}

// SurvivalProbability is the chance one independent, non-matured offspring
// lives through a turn.
func SurvivalProbability(s Survival, season world.Season, ageTurns int) float64 {
	p := s.Base
	switch season {
	case world.Winter:
		p -= s.WinterPenalty
	case world.Summer:
		p += s.SummerBonus
	}
	if ageTurns < s.YoungThreshold {
		p -= s.YoungPenalty
	}
	return clamp(p, s.Min, s.Max)
}

// RollOffspringSurvival rolls one offspring's turn. A failure picks a cause
// uniformly from causes; the cause is narrative only.
func RollOffspringSurvival(s Survival, causes []string, season world.Season, ageTurns int, r *rng.Rand) (bool, string) {
	if r.Chance(SurvivalProbability(s, season, ageTurns)) {
		return true, ""
	}
	cause := r.Pick(causes)
	if cause == "" {
		cause = "Did not survive"
	}
	return false, cause
}

// SpawnResult is the semelparous payoff.
type SpawnResult struct {
	EggCount  int `json:"egg_count"`
	Survivors int `json:"survivors"`
}

// Spawn computes egg count round(base + health*heaFactor + weight*weightFactor)
// and survivors round(eggs * clamp(survivalBase + wisdom*wisFactor, 0, 1)).
func Spawn(s Spawning, health, wisdom, weight float64) SpawnResult {
	eggs := max(int(math.Round(s.BaseEggCount+health*s.EggCountHeaFactor+weight*s.EggCountWeightFactor)), 0)
	rate := clamp(s.EggSurvivalBase+wisdom*s.EggSurvivalWisFactor, 0, 1)
	return SpawnResult{EggCount: eggs, Survivors: int(math.Round(float64(eggs) * rate))}
}
