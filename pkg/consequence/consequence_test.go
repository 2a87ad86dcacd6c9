package consequence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jwebster45206/survival-engine/pkg/tagged"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs every Target call as a string.
type recorder struct {
	calls []string
	fail  error
}

func (r *recorder) ModifyWeight(a float64)   { r.calls = append(r.calls, fmt.Sprintf("weight %.1f", a)) }
func (r *recorder) SetFlag(f string)         { r.calls = append(r.calls, "set "+f) }
func (r *recorder) RemoveFlag(f string)      { r.calls = append(r.calls, "remove "+f) }
func (r *recorder) ChangeRegion(id string)   { r.calls = append(r.calls, "region "+id) }
func (r *recorder) RemoveParasite(id string) { r.calls = append(r.calls, "cure "+id) }
func (r *recorder) Die(cause string)         { r.calls = append(r.calls, "die "+cause) }

func (r *recorder) AddParasite(id string, stage int) error {
	r.calls = append(r.calls, fmt.Sprintf("parasite %s@%d", id, stage))
	return r.fail
}

func (r *recorder) AddInjury(id string, severity int, part string) error {
	r.calls = append(r.calls, fmt.Sprintf("injury %s@%d %s", id, severity, part))
	return r.fail
}

func (r *recorder) StartPregnancy(n int) error {
	r.calls = append(r.calls, fmt.Sprintf("pregnant %d", n))
	return nil
}

func (r *recorder) SireOffspring(n int) error {
	r.calls = append(r.calls, fmt.Sprintf("sire %d", n))
	return nil
}

func (r *recorder) Spawn() error {
	r.calls = append(r.calls, "spawn")
	return nil
}

func TestList_DecodeAndApply(t *testing.T) {
	data := `[
		{"type": "modify_weight", "amount": -2.5},
		{"type": "set_flag", "flag": "den-found"},
		{"type": "remove_flag", "flag": "dispersing"},
		{"type": "change_region", "region_id": "lamar-valley"},
		{"type": "add_parasite", "parasite_id": "mange-mite", "start_stage": 1},
		{"type": "remove_parasite", "parasite_id": "tapeworm"},
		{"type": "add_injury", "injury_id": "rival-bite", "body_part": "neck"},
		{"type": "start_pregnancy"},
		{"type": "sire_offspring", "offspring_count": 3},
		{"type": "spawn"},
		{"type": "death", "cause": "Killed by a rival pack"}
	]`
	var l List
	require.NoError(t, json.Unmarshal([]byte(data), &l))
	require.Len(t, l, 11)

	rec := &recorder{}
	require.NoError(t, ApplyAll(l, rec))
	assert.Equal(t, []string{
		"weight -2.5",
		"set den-found",
		"remove dispersing",
		"region lamar-valley",
		"parasite mange-mite@1",
		"cure tapeworm",
		"injury rival-bite@0 neck",
		"pregnant 0",
		"sire 3",
		"spawn",
		"die Killed by a rival pack",
	}, rec.calls)
}

func TestApplyAll_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{fail: boom}
	err := ApplyAll([]Consequence{SetFlag{Flag: "a"}, AddParasite{ParasiteID: "x"}, SetFlag{Flag: "b"}}, rec)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"set a", "parasite x@0"}, rec.calls)
}

func TestList_UnknownKind(t *testing.T) {
	var l List
	err := json.Unmarshal([]byte(`[{"type": "set_flga", "flag": "a"}]`), &l)
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.True(t, strings.Contains(err.Error(), `"set_flag"`), err.Error())
}

func TestList_MisspelledField(t *testing.T) {
	var l List
	err := json.Unmarshal([]byte(`[{"type": "add_parasite", "parasite": "tapeworm"}]`), &l)
	require.ErrorIs(t, err, tagged.ErrUnknownField)
	assert.Contains(t, err.Error(), `"parasite_id"`)
}

func TestList_MarshalRoundTrip(t *testing.T) {
	in := List{ModifyWeight{Amount: 1.5}, Spawn{}, AddInjury{InjuryID: "cut", Severity: 2}}
	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type": "modify_weight", "amount": 1.5},
		{"type": "spawn"},
		{"type": "add_injury", "injury_id": "cut", "severity": 2}
	]`, string(out))

	var back List
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, in, back)
}
