package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/survival-engine/pkg/conditions"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

func TestTurn_VulnerableFlagFollowsWeight(t *testing.T) {
	lean := &events.Definition{
		ID:            "lean-times",
		NarrativeText: "Your ribs show through your coat.",
		Weight:        1,
		Conditions:    conditions.List{conditions.HasFlag{Flag: species.DefaultVulnerableFlag}},
	}
	b := wolfBundle(lean)
	b.Config.Weight.VulnerabilityThreshold = 80
	s, err := New(b, sharedContent())
	require.NoError(t, err)

	a := s.NewAnimal(world.Male, 1)
	a.Weight = 80.5
	start, err := s.BeginTurn(a, s.NextClock(a, nil), rng.New(rng.NewSequence(0)))
	require.NoError(t, err)
	if !a.Flags.Has("underweight") {
		t.Errorf("Expected underweight at %.1f, got flags %v", a.Weight, a.Flags.List())
	}
	require.NotNil(t, start.Prompt)
	assert.Equal(t, "lean-times", start.Prompt.EventID)

	a.Weight = 85
	_, err = s.FinishTurn(a, "", rng.New(rng.NewSequence(0.5)))
	require.NoError(t, err)
	assert.False(t, a.Flags.Has("underweight"))
}

func TestTurn_VulnerabilityDisabled(t *testing.T) {
	s := newSim(t)
	a := s.NewAnimal(world.Male, 1)
	a.Weight = 31

	_, err := s.BeginTurn(a, s.NextClock(a, nil), rng.New(rng.NewSequence(0)))
	require.NoError(t, err)
	assert.False(t, a.Flags.Has("underweight"))
}
