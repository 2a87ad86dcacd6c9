package narrative

import (
	"testing"

	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

func TestRender(t *testing.T) {
	vars := Vars{
		"animal.species": "gray wolf",
		"region.name":    "northern rockies",
		"time.season":    "winter",
	}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Snow falls.", "Snow falls."},
		{"substitution", "The {{animal.species}} waits.", "The gray wolf waits."},
		{"spaces", "The {{ animal.species }} waits.", "The gray wolf waits."},
		{"title filter", "Welcome to the {{region.name|title}}.", "Welcome to the Northern Rockies."},
		{"upper filter", "{{time.season|upper}}", "WINTER"},
		{"unknown placeholder", "A {{npc.rival.name}} appears.", "A {{npc.rival.name}} appears."},
		{"unknown filter", "{{time.season|reverse}}", "{{time.season|reverse}}"},
		{"repeated", "{{time.season}} after {{time.season}}", "winter after winter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.in, vars); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestVarsFor(t *testing.T) {
	cfg := &species.Config{
		Name:    "Gray Wolf",
		Regions: map[string]string{"lamar-valley": "Lamar Valley"},
		TemplateVars: species.TemplateVars{
			YoungNoun:       "pup",
			YoungNounPlural: "pups",
		},
	}
	a := state.NewAnimal("gray-wolf", world.Female, 1)
	a.Weight = 71.26
	a.Age = 14.5
	a.Region = "lamar-valley"
	a.Clock = world.Clock{Season: world.Autumn, Month: "October"}

	got := Render("{{animal.sex_pronoun}} leads {{animal.sex_possessive}} {{species.young_noun_plural}} "+
		"across {{region.name}} in {{time.month}}. The {{animal.species}} weighs {{animal.weight}} "+
		"and the sky is {{weather.type}}.", VarsFor(cfg, a))
	want := "she leads her pups across Lamar Valley in October. The gray wolf weighs 71.3 and the sky is clear."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
