package consequence

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jwebster45206/survival-engine/pkg/suggest"
	"github.com/jwebster45206/survival-engine/pkg/tagged"
)

// List reads and writes [{"type": "set_flag", "flag": "..."}, ...].
type List []Consequence

func decodeAs[T Consequence](raw []byte) (Consequence, error) {
	c, err := tagged.As[T](raw)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var decoders = map[Kind]func([]byte) (Consequence, error){
	KindModifyWeight:   decodeAs[ModifyWeight],
	KindSetFlag:        decodeAs[SetFlag],
	KindRemoveFlag:     decodeAs[RemoveFlag],
	KindChangeRegion:   decodeAs[ChangeRegion],
	KindAddParasite:    decodeAs[AddParasite],
	KindRemoveParasite: decodeAs[RemoveParasite],
	KindAddInjury:      decodeAs[AddInjury],
	KindStartPregnancy: decodeAs[StartPregnancy],
	KindSireOffspring:  decodeAs[SireOffspring],
	KindSpawn:          decodeAs[Spawn],
	KindDeath:          decodeAs[Death],
}

func Kinds() []string {
	out := make([]string, 0, len(decoders))
	for k := range decoders {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func Decode(data []byte) (Consequence, error) {
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

func Encode(c Consequence) ([]byte, error) {
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
			return fmt.Errorf("consequence %d: %w", i, err)
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
