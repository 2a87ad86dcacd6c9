// Package stats defines the fixed set of stat axes that describe an animal's
// condition and the additive effects that move them.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/suggest"
)

// ErrUnknownStat is returned when content names a stat axis that does not exist.
var ErrUnknownStat = errors.New("unknown stat")

// StatID is one of the nine stat axes.
type StatID string

const (
	// Physical stresses
	IMM StatID = "IMM" // Immune
	CLI StatID = "CLI" // Climate
	HOM StatID = "HOM" // Homeostasis

	// Mental stresses
	TRA StatID = "TRA" // Trauma
	ADV StatID = "ADV" // Adversity
	NOV StatID = "NOV" // Novelty

	// General fitness
	WIS StatID = "WIS" // Wisdom
	HEA StatID = "HEA" // Health
	STR StatID = "STR" // Stresses (aggregate)
)

// All lists every axis in display order.
var All = []StatID{IMM, CLI, HOM, TRA, ADV, NOV, WIS, HEA, STR}

const axisCount = 9

var index = map[StatID]int{
	IMM: 0, CLI: 1, HOM: 2,
	TRA: 3, ADV: 4, NOV: 5,
	WIS: 6, HEA: 7, STR: 8,
}

// ParseStatID validates a stat code.
func ParseStatID(s string) (StatID, error) {
	id := StatID(s)
	if _, ok := index[id]; !ok {
		names := make([]string, len(All))
		for i, a := range All {
			names[i] = string(a)
		}
		return "", fmt.Errorf("%w: %q%s", ErrUnknownStat, s, suggest.Hint(s, names))
	}
	return id, nil
}

// UnmarshalJSON rejects unknown axes at load time.
func (s *StatID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := ParseStatID(raw)
	if err != nil {
		return err
	}
	*s = id
	return nil
}

// Effect is a signed change to one axis.
type Effect struct {
	Stat   StatID `json:"stat"`
	Amount int    `json:"amount"`
	Label  string `json:"label,omitempty"` // display text, e.g. "-TRA"
}

// Vector maps every axis to a signed integer. The zero value is all zeros.
// Values are never clamped here; clamping is a host policy.
type Vector [axisCount]int

// Get returns the value of one axis. Unknown axes read as zero.
func (v Vector) Get(id StatID) int {
	i, ok := index[id]
	if !ok {
		return 0
	}
	return v[i]
}

// Add adds amount to one axis.
func (v *Vector) Add(id StatID, amount int) error {
	i, ok := index[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStat, id)
	}
	v[i] += amount
	return nil
}

// Apply adds every effect to the vector.
func (v *Vector) Apply(effects []Effect) error {
	for _, e := range effects {
		if err := v.Add(e.Stat, e.Amount); err != nil {
			return err
		}
	}
	return nil
}

// Plus returns the axis-wise sum of v and o.
func (v Vector) Plus(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// Sub returns the axis-wise difference v - o.
func (v Vector) Sub(o Vector) Vector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// IsZero reports whether every axis is zero.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Map returns the vector as a map keyed by stat code.
func (v Vector) Map() map[StatID]int {
	m := make(map[StatID]int, axisCount)
	for _, id := range All {
		m[id] = v.Get(id)
	}
	return m
}

// Scale multiplies each effect by fraction, rounding half away from zero.
// Effects that round to zero are dropped.
func Scale(effects []Effect, fraction float64) []Effect {
	var out []Effect
	for _, e := range effects {
		amt := int(math.Round(float64(e.Amount) * fraction))
		if amt == 0 {
			continue
		}
		out = append(out, Effect{Stat: e.Stat, Amount: amt, Label: e.Label})
	}
	return out
}

// MarshalJSON writes the vector as {"IMM": 0, ...}.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON reads {"IMM": 0, ...}. Missing axes are zero; unknown axes fail.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out Vector
	for _, k := range keys {
		id, err := ParseStatID(k)
		if err != nil {
			return err
		}
		out[index[id]] = raw[k]
	}
	*v = out
	return nil
}
