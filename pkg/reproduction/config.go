// Package reproduction holds the per-species reproduction formulas: mate
// competition, offspring count, offspring survival, pregnancy and offspring
// ticking, and semelparous spawning.
package reproduction

import (
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/conditions"
)

type Strategy string

const (
	Iteroparous Strategy = "iteroparous"
	Semelparous Strategy = "semelparous"
)

// Competition is the male mate-competition formula.
type Competition struct {
	Enabled              bool     `json:"enabled"`
	BaseWinProb          float64  `json:"base_win_prob"`
	MinWinProb           float64  `json:"min_win_prob"`
	MaxWinProb           float64  `json:"max_win_prob"`
	HeaFactor            float64  `json:"hea_factor"`
	HealthReference      float64  `json:"health_reference,omitempty"` // 50 when unset and no rival is present
	WeightReferencePoint float64  `json:"weight_reference_point"`
	WeightFactor         float64  `json:"weight_factor"`
	LowStressThreshold   float64  `json:"low_stress_threshold"`
	LowStressFactor      float64  `json:"low_stress_factor"`
	InjuryPenalty        float64  `json:"injury_penalty"`
	ParasitePenalty      float64  `json:"parasite_penalty"`
	LossInjuryChance     float64  `json:"loss_injury_chance"`
	LossInjuryID         string   `json:"loss_injury_id"`
	LossInjuryBodyParts  []string `json:"loss_injury_body_parts"`
	TriggerFlag          string   `json:"trigger_flag"`   // set by events to start a contest
	ChallengeFlag        string   `json:"challenge_flag"` // set on loss
	MatedFlag            string   `json:"mated_flag"`
}

// CountFormula maps the parent's condition to a litter size.
type CountFormula struct {
	WeightReference  float64 `json:"weight_reference"`
	WeightDivisor    float64 `json:"weight_divisor"`
	HeaReference     float64 `json:"hea_reference"`
	HeaDivisor       float64 `json:"hea_divisor"`
	SingleThreshold  float64 `json:"single_threshold"`
	TripletThreshold float64 `json:"triplet_threshold"`
	LitterThreshold  float64 `json:"litter_threshold,omitempty"` // triplets between triplet and litter thresholds; unset means none
	MaxOffspring     int     `json:"max_offspring"`
}

// Survival is the per-turn survival rate of independent offspring.
type Survival struct {
	Base           float64 `json:"base"`
	WinterPenalty  float64 `json:"winter_penalty"`
	SummerBonus    float64 `json:"summer_bonus"`
	YoungPenalty   float64 `json:"young_penalty"`
	YoungThreshold int     `json:"young_threshold"` // age in turns
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
}

// Spawning is the semelparous payoff formula.
type Spawning struct {
	BaseEggCount         float64 `json:"base_egg_count"`
	EggCountHeaFactor    float64 `json:"egg_count_hea_factor"`
	EggCountWeightFactor float64 `json:"egg_count_weight_factor"`
	EggSurvivalBase      float64 `json:"egg_survival_base"`
	EggSurvivalWisFactor float64 `json:"egg_survival_wis_factor"`
	CompleteFlag         string  `json:"complete_flag"`
}

// Config is a species' reproduction block.
type Config struct {
	Type                 Strategy        `json:"type"`
	MatingConditions     conditions.List `json:"mating_conditions,omitempty"`
	SeasonResetMonth     string          `json:"season_reset_month,omitempty"`
	MaleCompetition      Competition     `json:"male_competition"`
	GestationTurns       int             `json:"gestation_turns,omitempty"`
	OffspringCount       CountFormula    `json:"offspring_count"`
	DependenceTurns      int             `json:"dependence_turns,omitempty"`
	MaturationTurns      int             `json:"maturation_turns,omitempty"`
	OffspringSurvival    Survival        `json:"offspring_survival"`
	OffspringDeathCauses []string        `json:"offspring_death_causes,omitempty"`
	PregnantFlag         string          `json:"pregnant_flag,omitempty"`
	DependentFlag        string          `json:"dependent_flag,omitempty"`
	IndependenceFlag     string          `json:"independence_flag,omitempty"`
	Spawning             Spawning        `json:"spawning,omitempty"`
}

// Eligible reports whether the animal may currently attempt to mate.
func (c *Config) Eligible(v conditions.View) bool {
	return conditions.Evaluate(c.MatingConditions, v)
}

func checkProb(errs []error, name string, p float64) []error {
	if p < 0 || p > 1 {
		return append(errs, fmt.Errorf("%s %v outside [0,1]", name, p))
	}
	return errs
}

// Validate returns every problem with the block.
func (c *Config) Validate() []error {
	var errs []error
	switch c.Type {
	case Iteroparous, Semelparous:
	default:
		errs = append(errs, fmt.Errorf("type %q must be %q or %q", c.Type, Iteroparous, Semelparous))
	}

	mc := c.MaleCompetition
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"male_competition.base_win_prob", mc.BaseWinProb},
		{"male_competition.min_win_prob", mc.MinWinProb},
		{"male_competition.max_win_prob", mc.MaxWinProb},
		{"male_competition.loss_injury_chance", mc.LossInjuryChance},
		{"offspring_survival.base", c.OffspringSurvival.Base},
		{"offspring_survival.min", c.OffspringSurvival.Min},
		{"offspring_survival.max", c.OffspringSurvival.Max},
		{"spawning.egg_survival_base", c.Spawning.EggSurvivalBase},
	} {
		errs = checkProb(errs, p.name, p.v)
	}
	if mc.Enabled {
		if mc.MinWinProb > mc.MaxWinProb {
			errs = append(errs, fmt.Errorf("male_competition.min_win_prob %v exceeds max_win_prob %v", mc.MinWinProb, mc.MaxWinProb))
		}
		if mc.TriggerFlag == "" {
			errs = append(errs, fmt.Errorf("male_competition.trigger_flag is required when enabled"))
		}
		if mc.LossInjuryChance > 0 && mc.LossInjuryID == "" {
			errs = append(errs, fmt.Errorf("male_competition.loss_injury_id is required when loss_injury_chance > 0"))
		}
	}

	if c.Type == Iteroparous {
		if c.GestationTurns < 1 {
			errs = append(errs, fmt.Errorf("gestation_turns must be at least 1"))
		}
		f := c.OffspringCount
		if f.WeightDivisor == 0 || f.HeaDivisor == 0 {
			errs = append(errs, fmt.Errorf("offspring_count divisors must be non-zero"))
		}
		if f.SingleThreshold > f.TripletThreshold {
			errs = append(errs, fmt.Errorf("offspring_count.single_threshold %v exceeds triplet_threshold %v", f.SingleThreshold, f.TripletThreshold))
		}
		if f.LitterThreshold != 0 && f.LitterThreshold <= f.TripletThreshold {
			errs = append(errs, fmt.Errorf("offspring_count.litter_threshold %v must exceed triplet_threshold %v", f.LitterThreshold, f.TripletThreshold))
		}
		if f.MaxOffspring < 1 {
			errs = append(errs, fmt.Errorf("offspring_count.max_offspring must be at least 1"))
		}
		if c.OffspringSurvival.Min > c.OffspringSurvival.Max {
			errs = append(errs, fmt.Errorf("offspring_survival.min %v exceeds max %v", c.OffspringSurvival.Min, c.OffspringSurvival.Max))
		}
		if c.MaturationTurns < c.DependenceTurns {
			errs = append(errs, fmt.Errorf("maturation_turns %d is shorter than dependence_turns %d", c.MaturationTurns, c.DependenceTurns))
		}
	}
	return errs
}
