// Package consequence is the closed vocabulary of side effects that events,
// choices, sub-events and mate competition apply to an animal.
package consequence

import "errors"

// ErrUnknownKind is returned when content names a consequence type that does
// not exist.
var ErrUnknownKind = errors.New("unknown consequence type")

type Kind string

const (
	KindModifyWeight   Kind = "modify_weight"
	KindSetFlag        Kind = "set_flag"
	KindRemoveFlag     Kind = "remove_flag"
	KindChangeRegion   Kind = "change_region"
	KindAddParasite    Kind = "add_parasite"
	KindRemoveParasite Kind = "remove_parasite"
	KindAddInjury      Kind = "add_injury"
	KindStartPregnancy Kind = "start_pregnancy"
	KindSireOffspring  Kind = "sire_offspring"
	KindSpawn          Kind = "spawn"
	KindDeath          Kind = "death"
)

// Target is the mutable side of the simulation context. Implementations
// decide eligibility (species restrictions, reproduction strategy) and
// report configuration problems as errors.
type Target interface {
	ModifyWeight(amount float64)
	SetFlag(flag string)
	RemoveFlag(flag string)
	ChangeRegion(regionID string)
	AddParasite(parasiteID string, startStage int) error
	RemoveParasite(parasiteID string)
	AddInjury(injuryID string, severity int, bodyPart string) error
	StartPregnancy(offspringCount int) error
	SireOffspring(offspringCount int) error
	Spawn() error
	Die(cause string)
}

// Consequence is one side effect.
type Consequence interface {
	Kind() Kind
	Apply(t Target) error
	sealed()
}

// ApplyAll applies each consequence in order, stopping at the first error.
func ApplyAll(list []Consequence, t Target) error {
	for _, c := range list {
		if err := c.Apply(t); err != nil {
			return err
		}
	}
	return nil
}

type ModifyWeight struct {
	Amount float64 `json:"amount"`
}

type SetFlag struct {
	Flag string `json:"flag"`
}

// RemoveFlag is the "no_flag" mutation.
type RemoveFlag struct {
	Flag string `json:"flag"`
}

type ChangeRegion struct {
	RegionID string `json:"region_id"`
}

type AddParasite struct {
	ParasiteID string `json:"parasite_id"`
	StartStage int    `json:"start_stage,omitempty"`
}

// RemoveParasite is an explicit cure.
type RemoveParasite struct {
	ParasiteID string `json:"parasite_id"`
}

// AddInjury with an empty BodyPart draws one from the definition.
type AddInjury struct {
	InjuryID string `json:"injury_id"`
	Severity int    `json:"severity,omitempty"`
	BodyPart string `json:"body_part,omitempty"`
}

// StartPregnancy with a zero count derives it from the offspring formula.
type StartPregnancy struct {
	OffspringCount int `json:"offspring_count,omitempty"`
}

type SireOffspring struct {
	OffspringCount int `json:"offspring_count,omitempty"`
}

// Spawn is the terminal semelparous payoff.
type Spawn struct{}

type Death struct {
	Cause string `json:"cause"`
}

func (ModifyWeight) Kind() Kind   { return KindModifyWeight }
func (SetFlag) Kind() Kind        { return KindSetFlag }
func (RemoveFlag) Kind() Kind     { return KindRemoveFlag }
func (ChangeRegion) Kind() Kind   { return KindChangeRegion }
func (AddParasite) Kind() Kind    { return KindAddParasite }
func (RemoveParasite) Kind() Kind { return KindRemoveParasite }
func (AddInjury) Kind() Kind      { return KindAddInjury }
func (StartPregnancy) Kind() Kind { return KindStartPregnancy }
func (SireOffspring) Kind() Kind  { return KindSireOffspring }
func (Spawn) Kind() Kind          { return KindSpawn }
func (Death) Kind() Kind          { return KindDeath }

func (ModifyWeight) sealed()   {}
func (SetFlag) sealed()        {}
func (RemoveFlag) sealed()     {}
func (ChangeRegion) sealed()   {}
func (AddParasite) sealed()    {}
func (RemoveParasite) sealed() {}
func (AddInjury) sealed()      {}
func (StartPregnancy) sealed() {}
func (SireOffspring) sealed()  {}
func (Spawn) sealed()          {}
func (Death) sealed()          {}

func (c ModifyWeight) Apply(t Target) error {
	t.ModifyWeight(c.Amount)
	return nil
}

func (c SetFlag) Apply(t Target) error {
	t.SetFlag(c.Flag)
	return nil
}

func (c RemoveFlag) Apply(t Target) error {
	t.RemoveFlag(c.Flag)
	return nil
}

func (c ChangeRegion) Apply(t Target) error {
	t.ChangeRegion(c.RegionID)
	return nil
}

func (c AddParasite) Apply(t Target) error {
	return t.AddParasite(c.ParasiteID, c.StartStage)
}

func (c RemoveParasite) Apply(t Target) error {
	t.RemoveParasite(c.ParasiteID)
	return nil
}

func (c AddInjury) Apply(t Target) error {
	return t.AddInjury(c.InjuryID, c.Severity, c.BodyPart)
}

func (c StartPregnancy) Apply(t Target) error {
	return t.StartPregnancy(c.OffspringCount)
}

func (c SireOffspring) Apply(t Target) error {
	return t.SireOffspring(c.OffspringCount)
}

func (Spawn) Apply(t Target) error {
	return t.Spawn()
}

func (c Death) Apply(t Target) error {
	t.Die(c.Cause)
	return nil
}
