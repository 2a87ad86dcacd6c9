package conditions

import (
	"slices"

	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

type HasFlag struct {
	Flag string `json:"flag"`
}

type NoFlag struct {
	Flag string `json:"flag"`
}

type Sex struct {
	Sex world.Sex `json:"sex"`
}

// AgeRange is inclusive on both ends; a nil bound is open.
type AgeRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type Season struct {
	Seasons []world.Season `json:"seasons"`
}

type Weather struct {
	WeatherTypes []string `json:"weather_types"`
}

type Region struct {
	RegionIDs []string `json:"region_ids"`
}

type Species struct {
	SpeciesIDs []string `json:"species_ids"`
}

type TurnAbove struct {
	Threshold int `json:"threshold"`
}

type WeightAbove struct {
	Threshold float64 `json:"threshold"`
}

type WeightBelow struct {
	Threshold float64 `json:"threshold"`
}

type StatAbove struct {
	Stat      stats.StatID `json:"stat"`
	Threshold int          `json:"threshold"`
}

type StatBelow struct {
	Stat      stats.StatID `json:"stat"`
	Threshold int          `json:"threshold"`
}

type HasParasite struct {
	ParasiteID string `json:"parasite_id"`
}

type NoParasite struct {
	ParasiteID string `json:"parasite_id"`
}

// HasInjury with an empty InjuryID matches any injury.
type HasInjury struct {
	InjuryID string `json:"injury_id,omitempty"`
}

// NoInjury with an empty InjuryID requires the animal to be uninjured.
type NoInjury struct {
	InjuryID string `json:"injury_id,omitempty"`
}

func (HasFlag) Kind() Kind     { return KindHasFlag }
func (NoFlag) Kind() Kind      { return KindNoFlag }
func (Sex) Kind() Kind         { return KindSex }
func (AgeRange) Kind() Kind    { return KindAgeRange }
func (Season) Kind() Kind      { return KindSeason }
func (Weather) Kind() Kind     { return KindWeather }
func (Region) Kind() Kind      { return KindRegion }
func (Species) Kind() Kind     { return KindSpecies }
func (TurnAbove) Kind() Kind   { return KindTurnAbove }
func (WeightAbove) Kind() Kind { return KindWeightAbove }
func (WeightBelow) Kind() Kind { return KindWeightBelow }
func (StatAbove) Kind() Kind   { return KindStatAbove }
func (StatBelow) Kind() Kind   { return KindStatBelow }
func (HasParasite) Kind() Kind { return KindHasParasite }
func (NoParasite) Kind() Kind  { return KindNoParasite }
func (HasInjury) Kind() Kind   { return KindHasInjury }
func (NoInjury) Kind() Kind    { return KindNoInjury }

func (HasFlag) sealed()     {}
func (NoFlag) sealed()      {}
func (Sex) sealed()         {}
func (AgeRange) sealed()    {}
func (Season) sealed()      {}
func (Weather) sealed()     {}
func (Region) sealed()      {}
func (Species) sealed()     {}
func (TurnAbove) sealed()   {}
func (WeightAbove) sealed() {}
func (WeightBelow) sealed() {}
func (StatAbove) sealed()   {}
func (StatBelow) sealed()   {}
func (HasParasite) sealed() {}
func (NoParasite) sealed()  {}
func (HasInjury) sealed()   {}
func (NoInjury) sealed()    {}

func (c HasFlag) Holds(v View) bool { return v.HasFlag(c.Flag) }
func (c NoFlag) Holds(v View) bool  { return !v.HasFlag(c.Flag) }
func (c Sex) Holds(v View) bool     { return v.GetSex() == c.Sex }

func (c AgeRange) Holds(v View) bool {
	age := v.GetAge()
	if c.Min != nil && age < *c.Min {
		return false
	}
	if c.Max != nil && age > *c.Max {
		return false
	}
	return true
}

func (c Season) Holds(v View) bool { return slices.Contains(c.Seasons, v.GetSeason()) }

// Weather never holds when the host supplies no weather.
func (c Weather) Holds(v View) bool {
	w := v.GetWeather()
	return w != "" && slices.Contains(c.WeatherTypes, w)
}

func (c Region) Holds(v View) bool      { return slices.Contains(c.RegionIDs, v.GetRegion()) }
func (c Species) Holds(v View) bool     { return slices.Contains(c.SpeciesIDs, v.GetSpeciesID()) }
func (c TurnAbove) Holds(v View) bool   { return v.GetTurn() > c.Threshold }
func (c WeightAbove) Holds(v View) bool { return v.GetWeight() > c.Threshold }
func (c WeightBelow) Holds(v View) bool { return v.GetWeight() < c.Threshold }
func (c StatAbove) Holds(v View) bool   { return v.GetStat(c.Stat) > c.Threshold }
func (c StatBelow) Holds(v View) bool   { return v.GetStat(c.Stat) < c.Threshold }
func (c HasParasite) Holds(v View) bool { return v.HasParasite(c.ParasiteID) }
func (c NoParasite) Holds(v View) bool  { return !v.HasParasite(c.ParasiteID) }
func (c HasInjury) Holds(v View) bool   { return v.HasInjury(c.InjuryID) }
func (c NoInjury) Holds(v View) bool    { return !v.HasInjury(c.InjuryID) }
