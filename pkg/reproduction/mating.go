package reproduction

import (
	"github.com/jwebster45206/survival-engine/pkg/actor"
	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/consequence"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// MatingOutcome is the result of one mating attempt. Consequences must be
// applied by the caller; a lost contest is an outcome, not an error.
type MatingOutcome struct {
	Contested      bool             `json:"contested"`
	RivalID        string           `json:"rival_id,omitempty"`
	WinProbability float64          `json:"win_probability"`
	Won            bool             `json:"won"`
	OffspringCount int              `json:"offspring_count,omitempty"`
	Injured        bool             `json:"injured,omitempty"`
	RivalWound     int              `json:"rival_wound,omitempty"`  // damage dealt to a beaten rival
	RivalHealth    int              `json:"rival_health,omitempty"` // the rival's health after the contest
	Consequences   consequence.List `json:"consequences"`
}

// NewContender reads the win-formula inputs from the animal. A rival, when
// present, supplies the health and weight references.
func NewContender(v conditions.View, rival *actor.Rival, c Competition) Contender {
	in := Contender{
		Health:          float64(v.GetStat(stats.HEA)),
		Weight:          v.GetWeight(),
		Stress:          float64(v.GetStat(stats.STR)),
		Injured:         v.HasInjury(""),
		Parasitized:     v.HasParasite(""),
		HealthReference: c.HealthReference,
		WeightReference: c.WeightReferencePoint,
	}
	if in.HealthReference == 0 {
		in.HealthReference = DefaultHealthReference
	}
	if rival != nil {
		in.HealthReference = float64(rival.Health())
		if w := rival.Weight(); w > 0 {
			in.WeightReference = float64(w)
		}
	}
	return in
}

// AttemptMating resolves one attempt. With competition disabled the attempt
// always succeeds. A win for a male sires offspring; a win for a female
// starts a pregnancy. A loss may inflict the configured injury and sets the
// challenge flag. The trigger flag is always consumed.
func AttemptMating(v conditions.View, rival *actor.Rival, cfg *Config, r *rng.Rand) MatingOutcome {
	mc := cfg.MaleCompetition
	out := MatingOutcome{WinProbability: 1, Won: true}
	if rival != nil {
		out.RivalID = rival.Spec.ID
	}

	if mc.Enabled {
		out.Contested = true
		out.WinProbability = WinProbability(mc, NewContender(v, rival, mc))
		out.Won = r.Chance(out.WinProbability)
	}

	if out.Won {
		out.OffspringCount = OffspringCount(cfg.OffspringCount, v.GetWeight(), float64(v.GetStat(stats.HEA)))
		if v.GetSex() == world.Male {
			out.Consequences = append(out.Consequences, consequence.SireOffspring{OffspringCount: out.OffspringCount})
		} else {
			out.Consequences = append(out.Consequences, consequence.StartPregnancy{OffspringCount: out.OffspringCount})
		}
		if mc.MatedFlag != "" {
			out.Consequences = append(out.Consequences, consequence.SetFlag{Flag: mc.MatedFlag})
		}
	} else {
		if r.Chance(mc.LossInjuryChance) {
			out.Injured = true
			part := r.Pick(mc.LossInjuryBodyParts)
			out.Consequences = append(out.Consequences, consequence.AddInjury{
				InjuryID: mc.LossInjuryID,
				Severity: r.IntRange(0, 1),
				BodyPart: part,
			})
		}
		if mc.ChallengeFlag != "" {
			out.Consequences = append(out.Consequences, consequence.SetFlag{Flag: mc.ChallengeFlag})
		}
	}
	if mc.TriggerFlag != "" {
		out.Consequences = append(out.Consequences, consequence.RemoveFlag{Flag: mc.TriggerFlag})
	}
	return out
}
