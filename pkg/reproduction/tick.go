package reproduction

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

type Pregnancy struct {
	ConceivedOnTurn int `json:"conceived_on_turn"`
	TurnsRemaining  int `json:"turns_remaining"`
	OffspringCount  int `json:"offspring_count"`
}

type Offspring struct {
	ID            string    `json:"id"`
	Sex           world.Sex `json:"sex"`
	BornOnTurn    int       `json:"born_on_turn"`
	AgeTurns      int       `json:"age_turns"`
	Alive         bool      `json:"alive"`
	Independent   bool      `json:"independent"`
	Matured       bool      `json:"matured"`
	SiredByPlayer bool      `json:"sired_by_player,omitempty"`
	CauseOfDeath  string    `json:"cause_of_death,omitempty"`
}

// State is the animal's reproduction record.
type State struct {
	Pregnancy          *Pregnancy  `json:"pregnancy,omitempty"`
	Offspring          []Offspring `json:"offspring,omitempty"`
	MatedThisSeason    bool        `json:"mated_this_season,omitempty"`
	SeasonResetYear    int         `json:"season_reset_year,omitempty"` // last reset year + 1
	Spawned            bool        `json:"spawned,omitempty"`
	EggCount           int         `json:"egg_count,omitempty"`
	EstimatedSurvivors int         `json:"estimated_survivors,omitempty"`
	TotalFitness       int         `json:"total_fitness"`
}

func (s State) Clone() State {
	out := s
	if s.Pregnancy != nil {
		p := *s.Pregnancy
		out.Pregnancy = &p
	}
	out.Offspring = append([]Offspring(nil), s.Offspring...)
	return out
}

// NewOffspring creates count offspring born this turn. Sex is a fair coin.
// Offspring sired by a male player receive no paternal care and start
// independent.
func NewOffspring(count, turn, firstIndex int, siredByPlayer bool, r *rng.Rand) []Offspring {
	out := make([]Offspring, 0, count)
	for i := 0; i < count; i++ {
		sex := world.Female
		if r.Chance(0.5) {
			sex = world.Male
		}
		out = append(out, Offspring{
			ID:            fmt.Sprintf("offspring-%d-%d", turn, firstIndex+i),
			Sex:           sex,
			BornOnTurn:    turn,
			Alive:         true,
			Independent:   siredByPlayer,
			SiredByPlayer: siredByPlayer,
		})
	}
	return out
}

// TickResult reports one turn of pregnancy and offspring progress.
type TickResult struct {
	State        State       `json:"state"`
	Born         []Offspring `json:"born,omitempty"`
	Independent  []Offspring `json:"independent,omitempty"`
	Died         []Offspring `json:"died,omitempty"`
	Matured      []Offspring `json:"matured,omitempty"`
	FlagsSet     []string    `json:"flags_set,omitempty"`
	FlagsCleared []string    `json:"flags_cleared,omitempty"`
}

// Tick advances gestation, ages every living offspring, rolls survival for
// independent non-matured offspring, and resets the mating season. Only
// iteroparous species have anything to tick.
func Tick(cfg *Config, st State, v conditions.View, clock world.Clock, r *rng.Rand) TickResult {
	res := TickResult{State: st.Clone()}
	if cfg.Type != Iteroparous {
		return res
	}
	s := &res.State
	set, cleared := map[string]bool{}, map[string]bool{}
	mark := func(m map[string]bool, f string) {
		if f != "" {
			m[f] = true
		}
	}

	if s.Pregnancy != nil {
		s.Pregnancy.TurnsRemaining--
		if s.Pregnancy.TurnsRemaining <= 0 {
			born := NewOffspring(s.Pregnancy.OffspringCount, clock.Turn, len(s.Offspring), false, r)
			s.Offspring = append(s.Offspring, born...)
			res.Born = born
			s.Pregnancy = nil
			mark(set, cfg.DependentFlag)
			mark(cleared, cfg.PregnantFlag)
		}
	}

	anyDependent := false
	for i := range s.Offspring {
		o := &s.Offspring[i]
		if !o.Alive {
			continue
		}
		o.AgeTurns++
		if !o.Independent && o.AgeTurns >= cfg.DependenceTurns {
			o.Independent = true
			res.Independent = append(res.Independent, *o)
		}
		if o.Independent && !o.Matured {
			if ok, cause := RollOffspringSurvival(cfg.OffspringSurvival, cfg.OffspringDeathCauses, clock.Season, o.AgeTurns, r); !ok {
				o.Alive = false
				o.CauseOfDeath = cause
				res.Died = append(res.Died, *o)
				continue
			}
		}
		if o.Independent && !o.Matured && o.AgeTurns >= cfg.MaturationTurns {
			o.Matured = true
			res.Matured = append(res.Matured, *o)
		}
		if !o.Independent {
			anyDependent = true
		}
	}

	if !anyDependent && len(res.Born) == 0 && cfg.DependentFlag != "" && v.HasFlag(cfg.DependentFlag) {
		mark(cleared, cfg.DependentFlag)
	}
	if len(res.Independent) > 0 {
		mark(set, cfg.IndependenceFlag)
	} else if cfg.IndependenceFlag != "" && v.HasFlag(cfg.IndependenceFlag) {
		mark(cleared, cfg.IndependenceFlag)
	}

	if cfg.SeasonResetMonth != "" && clock.Month == cfg.SeasonResetMonth && s.SeasonResetYear != clock.Year+1 {
		s.SeasonResetYear = clock.Year + 1
		s.MatedThisSeason = false
		mark(cleared, cfg.MaleCompetition.MatedFlag)
		mark(cleared, cfg.MaleCompetition.ChallengeFlag)
	}

	matured := 0
	for _, o := range s.Offspring {
		if o.Matured {
			matured++
		}
	}
	s.TotalFitness = matured

	res.FlagsSet = keys(set)
	res.FlagsCleared = keys(cleared)
	return res
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
