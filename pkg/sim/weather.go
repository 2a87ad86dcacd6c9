package sim

import (
	"slices"

	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// weather keeps the current weather while it has turns left and still belongs
// to the season's table, and otherwise draws a new one. Seasons without a
// table clear the weather; a species without any table leaves it to the host.
func (s *Simulator) weather(c world.Clock, r *rng.Rand) world.Clock {
	if len(s.cfg.Weather) == 0 {
		return c
	}
	options := s.cfg.WeatherFor(c.Season)
	if len(options) == 0 {
		c.Weather, c.WeatherTurns = "", 0
		return c
	}
	held := slices.ContainsFunc(options, func(o species.WeatherOption) bool { return o.Type == c.Weather })
	if held && c.WeatherTurns > 1 {
		c.WeatherTurns--
		return c
	}

	weights := make([]float64, len(options))
	for i, o := range options {
		weights[i] = o.Weight
	}
	i := r.WeightedIndex(weights)
	if i < 0 {
		c.Weather, c.WeatherTurns = "", 0
		return c
	}
	o := options[i]
	c.Weather = o.Type
	c.WeatherTurns = max(1, r.IntRange(o.MinTurns, o.MaxTurns))
	if s.logger != nil {
		s.logger.Debug("Weather drawn", "season", c.Season, "weather", c.Weather, "turns", c.WeatherTurns)
	}
	return c
}
