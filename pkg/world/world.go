// Package world holds the read-only calendar and categorical context the host
// supplies on every turn.
package world

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

var Seasons = []Season{Spring, Summer, Autumn, Winter}

func (s *Season) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw != "" && !slices.Contains(Seasons, Season(raw)) {
		return fmt.Errorf("unknown season %q", raw)
	}
	*s = Season(raw)
	return nil
}

type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

func (s *Sex) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch Sex(raw) {
	case Male, Female:
		*s = Sex(raw)
		return nil
	}
	return fmt.Errorf("unknown sex %q", raw)
}

// Clock is the host's view of time for one turn.
type Clock struct {
	Turn    int    `json:"turn"`
	Season  Season `json:"season,omitempty"`
	Month   string `json:"month,omitempty"`
	Year    int    `json:"year,omitempty"`
	Weather string `json:"weather,omitempty"`
	// WeatherTurns counts the turns the current weather has left to hold.
	WeatherTurns int `json:"weather_turns,omitempty"`
}

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// SeasonForMonth maps a 0-based month index to its northern-hemisphere season.
func SeasonForMonth(monthIndex int) Season {
	switch ((monthIndex % 12) + 12) % 12 {
	case 2, 3, 4:
		return Spring
	case 5, 6, 7:
		return Summer
	case 8, 9, 10:
		return Autumn
	default:
		return Winter
	}
}

// ClockAt returns the calendar position of a turn. Turn 0 is the first week
// (or day, or month) of January in year 0.
func ClockAt(turn, turnsPerMonth int) Clock {
	if turnsPerMonth < 1 {
		turnsPerMonth = 1
	}
	monthIndex := turn / turnsPerMonth
	return Clock{
		Turn:   turn,
		Month:  months[monthIndex%12],
		Year:   monthIndex / 12,
		Season: SeasonForMonth(monthIndex),
	}
}

// Advance returns the clock for the next turn. turnsPerMonth is 4 for weekly
// species, 1 for monthly, 30 for daily; values below 1 are treated as 1.
// Weather and its remaining turns are carried over unchanged.
func (c Clock) Advance(turnsPerMonth int) Clock {
	next := ClockAt(c.Turn+1, turnsPerMonth)
	next.Weather = c.Weather
	next.WeatherTurns = c.WeatherTurns
	return next
}

// MonthsPerTurn converts a species turn unit into elapsed months per turn.
func MonthsPerTurn(unit string) float64 {
	switch unit {
	case "month":
		return 1
	case "day":
		return 1.0 / 30
	default:
		return 0.25
	}
}

// TurnsPerMonth is the inverse of MonthsPerTurn, rounded.
func TurnsPerMonth(unit string) int {
	switch unit {
	case "month":
		return 1
	case "day":
		return 30
	default:
		return 4
	}
}
