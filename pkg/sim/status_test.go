package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

func TestAfflictionStatus(t *testing.T) {
	s := newSim(t)
	a := s.NewAnimal(world.Male, 1)
	a.Afflictions = []affliction.Instance{
		{Kind: affliction.KindParasite, DefinitionID: "heartworm", Stage: 1},
		{Kind: affliction.KindInjury, DefinitionID: "rival-bite", Stage: 0, BodyPart: "ear", Resting: true},
	}

	got, err := s.AfflictionStatus(a)
	require.NoError(t, err)
	require.Len(t, got, 2)
	if got[0].Severity != affliction.Critical {
		t.Errorf("Expected critical heartworm, got %q", got[0].Severity)
	}
	assert.Equal(t, AfflictionStatus{
		Index: 1, Kind: affliction.KindInjury, ID: "rival-bite", Name: "Rival Bite",
		Severity: affliction.Minor, BodyPart: "ear", Resting: true,
	}, got[1])
	assert.Equal(t, "Heartworm", got[0].Name)

	a.Afflictions = append(a.Afflictions, affliction.Instance{Kind: affliction.KindInjury, DefinitionID: "rival-bite", Stage: 4})
	_, err = s.AfflictionStatus(a)
	assert.True(t, errors.Is(err, affliction.ErrStageOutOfRange))

	a.Afflictions = []affliction.Instance{{Kind: affliction.KindParasite, DefinitionID: "lungworm"}}
	_, err = s.AfflictionStatus(a)
	assert.True(t, errors.Is(err, affliction.ErrUnknownDefinition))
}
