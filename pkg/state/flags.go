package state

import (
	"encoding/json"
	"sort"
)

// Flags is the animal's set of life facts. Absent flags read as false. It
// serializes as a sorted array.
type Flags map[string]bool

func (f Flags) Has(flag string) bool { return f[flag] }

func (f Flags) Set(flag string) {
	if flag != "" {
		f[flag] = true
	}
}

func (f Flags) Remove(flag string) { delete(f, flag) }

func (f Flags) List() []string {
	out := make([]string, 0, len(f))
	for k, v := range f {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (f Flags) Clone() Flags {
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.List())
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	out := make(Flags, len(list))
	for _, k := range list {
		out.Set(k)
	}
	*f = out
	return nil
}

// Ledger maps event id to the turn it last fired.
type Ledger map[string]int

// Ready reports whether an event with the given cooldown may fire on turn.
// An event that never fired is always ready.
func (l Ledger) Ready(eventID string, cooldown, turn int) bool {
	last, ok := l[eventID]
	if !ok {
		return true
	}
	return turn-last >= cooldown
}

func (l Ledger) Record(eventID string, turn int) { l[eventID] = turn }

func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
