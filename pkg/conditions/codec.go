package conditions

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/suggest"
	"github.com/jwebster45206/survival-engine/pkg/tagged"
)

// List is a conjunction of conditions that reads and writes the tagged JSON
// form: [{"type": "has_flag", "flag": "denning"}, ...].
type List []Condition

func decodeAs[T Condition](raw []byte) (Condition, error) {
	c, err := tagged.As[T](raw)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var decoders = map[Kind]func([]byte) (Condition, error){
	KindHasFlag:     decodeAs[HasFlag],
	KindNoFlag:      decodeAs[NoFlag],
	KindSex:         decodeAs[Sex],
	KindAgeRange:    decodeAs[AgeRange],
	KindSeason:      decodeAs[Season],
	KindWeather:     decodeAs[Weather],
	KindRegion:      decodeAs[Region],
	KindSpecies:     decodeAs[Species],
	KindTurnAbove:   decodeAs[TurnAbove],
	KindWeightAbove: decodeAs[WeightAbove],
	KindWeightBelow: decodeAs[WeightBelow],
	KindStatAbove:   decodeAs[StatAbove],
	KindStatBelow:   decodeAs[StatBelow],
	KindHasParasite: decodeAs[HasParasite],
	KindNoParasite:  decodeAs[NoParasite],
	KindHasInjury:   decodeAs[HasInjury],
	KindNoInjury:    decodeAs[NoInjury],
}

// Kinds lists every known condition type, sorted.
func Kinds() []string {
	out := make([]string, 0, len(decoders))
	for k := range decoders {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Decode reads one tagged condition.
func Decode(data []byte) (Condition, error) {
	kind, err := tagged.Type(data)
	if err != nil {
		return nil, err
	}
	dec, ok := decoders[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w %q%s", ErrUnknownKind, kind, suggest.Hint(kind, Kinds()))
	}
	c, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return c, nil
}

// Encode writes one condition with its "type" tag.
func Encode(c Condition) ([]byte, error) {
	return tagged.Encode(string(c.Kind()), c)
}

func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		c, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

func (l List) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(l))
	for _, c := range l {
		b, err := Encode(c)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(raws)
}
