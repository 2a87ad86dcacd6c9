// Package narrative fills {{placeholders}} in event text.
package narrative

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// Vars maps placeholder names such as "animal.species" to their text.
type Vars map[string]string

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_.]+)\s*(?:\|\s*([a-z]+)\s*)?\}\}`)

// Render substitutes every known placeholder. A placeholder may carry one
// filter: {{region.name|title}}, {{time.season|upper}} or |lower. Unknown
// placeholders and unknown filters are left untouched.
func Render(text string, vars Vars) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		v, ok := vars[sub[1]]
		if !ok {
			return m
		}
		switch sub[2] {
		case "":
			return v
		case "title":
			return cases.Title(language.English).String(v)
		case "upper":
			return cases.Upper(language.English).String(v)
		case "lower":
			return cases.Lower(language.English).String(v)
		default:
			return m
		}
	})
}

// VarsFor builds the template variables for one animal.
func VarsFor(cfg *species.Config, a *state.Animal) Vars {
	tv := cfg.TemplateVars
	pronoun, possessive := "he", "his"
	if a.Sex == world.Female {
		pronoun, possessive = "she", "her"
	}
	speciesName := tv.SpeciesName
	if speciesName == "" {
		speciesName = cases.Lower(language.English).String(cfg.Name)
	}
	weather := a.Clock.Weather
	if weather == "" {
		weather = "clear"
	}
	return Vars{
		"animal.species":            speciesName,
		"animal.name":               a.Name,
		"animal.sex_pronoun":        pronoun,
		"animal.sex_possessive":     possessive,
		"animal.weight":             number(a.Weight),
		"animal.age":                number(a.Age),
		"time.season":               string(a.Clock.Season),
		"time.month":                a.Clock.Month,
		"time.year":                 strconv.Itoa(a.Clock.Year + 1),
		"region.name":               cfg.RegionName(a.Region),
		"weather.type":              weather,
		"species.young_noun":        tv.YoungNoun,
		"species.young_noun_plural": tv.YoungNounPlural,
		"species.male_noun":         tv.MaleNoun,
		"species.female_noun":       tv.FemaleNoun,
		"species.group_noun":        tv.GroupNoun,
		"species.habitat":           tv.Habitat,
	}
}

// number formats to at most one decimal place.
func number(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}
