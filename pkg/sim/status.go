package sim

import (
	"fmt"

	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/state"
)

// AfflictionStatus is the display view of one affliction the animal carries.
// Index is its position in the animal's affliction list, the index rest
// requests use.
type AfflictionStatus struct {
	Index    int                 `json:"index"`
	Kind     affliction.Kind     `json:"kind"`
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Severity affliction.Severity `json:"severity"`
	BodyPart string              `json:"body_part,omitempty"`
	Resting  bool                `json:"resting,omitempty"`
}

// AfflictionStatus resolves the name and current severity of every
// affliction on the animal.
func (s *Simulator) AfflictionStatus(a *state.Animal) ([]AfflictionStatus, error) {
	out := make([]AfflictionStatus, 0, len(a.Afflictions))
	for i, inst := range a.Afflictions {
		severity, name, err := s.lib.Severity(inst)
		if err != nil {
			return nil, fmt.Errorf("affliction %d: %w", i, err)
		}
		out = append(out, AfflictionStatus{
			Index:    i,
			Kind:     inst.Kind,
			ID:       inst.DefinitionID,
			Name:     name,
			Severity: severity,
			BodyPart: inst.BodyPart,
			Resting:  inst.Resting,
		})
	}
	return out, nil
}
