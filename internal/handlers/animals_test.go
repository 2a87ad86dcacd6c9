package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/survival-engine/internal/storage"
	"github.com/jwebster45206/survival-engine/pkg/affliction"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/sim"
	"github.com/jwebster45206/survival-engine/pkg/species"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/stats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(id, name string) *species.Config {
	var base stats.Vector
	_ = base.Add(stats.HEA, 60)
	return &species.Config{
		ID:             id,
		Name:           name,
		DefaultRegion:  "lamar-valley",
		StartingAge:    12,
		StartingWeight: species.StartingWeight{Male: 90, Female: 75},
		BaseStats:      base,
		Weight:         species.Weight{StarvationDeath: 10, MinFloor: 5},
	}
}

// The wolf's only event asks for a choice; the fox's never does.
func testStorage() *storage.MockStorage {
	store := storage.NewMockStorage()
	store.AddSpecies(&species.Bundle{
		Config: testConfig("gray-wolf", "Gray Wolf"),
		Content: species.Content{
			Events: []*events.Definition{{
				ID:            "ambush",
				Type:          events.Active,
				NarrativeText: "A cougar crouches above the trail.",
				Weight:        1,
				Choices: []events.Choice{
					{ID: "fight", Label: "Fight", StatEffects: []stats.Effect{{Stat: stats.STR, Amount: 1}}},
					{ID: "hide", Label: "Hide", NarrativeResult: "You slip into the willows.", StatEffects: []stats.Effect{{Stat: stats.TRA, Amount: 2}}},
				},
			}},
			Parasites: map[string]*affliction.ParasiteDefinition{
				"heartworm": {ID: "heartworm", Name: "Heartworm", Stages: []affliction.ParasiteStage{
					{Severity: affliction.Moderate, TurnDuration: affliction.Range{Min: 3, Max: 3}},
				}},
			},
			Injuries: map[string]*affliction.InjuryDefinition{
				"rival-bite": {ID: "rival-bite", Name: "Rival Bite", BodyParts: []string{"neck"},
					SeverityLevels: []affliction.InjuryLevel{{Severity: affliction.Minor, BaseHealingTime: 2}}},
				"torn-pad": {ID: "torn-pad", Name: "Torn Pad", BodyParts: []string{"forepaw"},
					SeverityLevels: []affliction.InjuryLevel{{Severity: affliction.Severe, BaseHealingTime: 4}}},
			},
		},
	})
	store.AddSpecies(&species.Bundle{
		Config: testConfig("red-fox", "Red Fox"),
		Content: species.Content{Events: []*events.Definition{{
			ID:            "vole",
			Type:          events.Passive,
			NarrativeText: "You pounce on a vole.",
			Weight:        1,
			StatEffects:   []stats.Effect{{Stat: stats.STR, Amount: 1}},
		}}},
	})
	return store
}

func newTestRouter(store storage.Storage) http.Handler {
	return NewRouter(store, RouterOptions{DefaultSpecies: "gray-wolf", NewSeed: func() uint64 { return 99 }}, testLogger())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createAnimal(t *testing.T, h http.Handler, body map[string]any) *state.Animal {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/animals", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AnimalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Animal
}

func TestAnimalHandler_Create(t *testing.T) {
	h := newTestRouter(testStorage())

	a := createAnimal(t, h, map[string]any{"sex": "female", "name": "Nine"})
	assert.Equal(t, "gray-wolf", a.SpeciesID, "default species")
	assert.Equal(t, 75.0, a.Weight)
	assert.Equal(t, "Nine", a.Name)
	assert.Equal(t, uint64(99), a.Seed)

	fox := createAnimal(t, h, map[string]any{"species": "red-fox", "sex": "male", "seed": 7})
	assert.Equal(t, "red-fox", fox.SpeciesID)
	assert.Equal(t, uint64(7), fox.Seed)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"missing sex", map[string]any{"species": "gray-wolf"}, http.StatusBadRequest},
		{"unknown sex", map[string]any{"sex": "other"}, http.StatusBadRequest},
		{"unknown species", map[string]any{"species": "lynx", "sex": "male"}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/animals", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestAnimalHandler_Read(t *testing.T) {
	h := newTestRouter(testStorage())
	a := createAnimal(t, h, map[string]any{"sex": "male"})

	w := do(t, h, http.MethodGet, "/v1/animals/"+a.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp AnimalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, a.ID, resp.Animal.ID)
	assert.Equal(t, 60, resp.EffectiveStats.Get(stats.HEA))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/v1/animals/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/v1/animals/"+uuid.NewString(), nil).Code)
}

func TestAnimalHandler_TurnWithChoice(t *testing.T) {
	store := testStorage()
	h := newTestRouter(store)
	a := createAnimal(t, h, map[string]any{"sex": "male", "seed": 3})
	base := "/v1/animals/" + a.ID.String()

	w := do(t, h, http.MethodPost, base+"/turns", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var turn TurnResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	require.NotNil(t, turn.Start.Prompt)
	assert.Equal(t, "ambush", turn.Start.Prompt.EventID)
	assert.Len(t, turn.Start.Prompt.Choices, 2)
	assert.Nil(t, turn.Result)

	saved, _ := store.LoadAnimal(context.Background(), a.ID)
	require.NotNil(t, saved.Pending)
	assert.Equal(t, 1, saved.Clock.Turn)

	// asking again returns the same prompt without advancing
	w = do(t, h, http.MethodPost, base+"/turns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.True(t, turn.Start.Resumed)
	assert.Equal(t, 1, turn.Start.Turn)

	w = do(t, h, http.MethodPost, base+"/choice", ChoiceRequest{ChoiceID: "hyde"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "hide")

	w = do(t, h, http.MethodPost, base+"/choice", ChoiceRequest{ChoiceID: "hide"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res sim.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, sim.OutcomeNone, res.Outcome)
	assert.Equal(t, 2, res.StatDelta.Get(stats.TRA))
	assert.Contains(t, res.Narrative, "You slip into the willows.")

	saved, _ = store.LoadAnimal(context.Background(), a.ID)
	assert.Nil(t, saved.Pending)
	assert.Equal(t, 2, saved.Stats.Get(stats.TRA))

	w = do(t, h, http.MethodPost, base+"/choice", ChoiceRequest{ChoiceID: "hide"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodGet, base+"/journal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var journal JournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Entries, 2)
	assert.Equal(t, []string{"A cougar crouches above the trail."}, journal.Entries[0].Lines)
	assert.Equal(t, "none", journal.Entries[1].Outcome)
}

func TestAnimalHandler_TurnWithoutChoice(t *testing.T) {
	store := testStorage()
	h := newTestRouter(store)
	fox := createAnimal(t, h, map[string]any{"species": "red-fox", "sex": "female"})
	base := "/v1/animals/" + fox.ID.String()

	for turn := 1; turn <= 2; turn++ {
		w := do(t, h, http.MethodPost, base+"/turns", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp TurnResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Result, "turn %d should complete", turn)
		assert.Equal(t, turn, resp.Result.Turn)
		assert.Equal(t, turn, resp.Result.Stats.Get(stats.STR))
	}

	saved, _ := store.LoadAnimal(context.Background(), fox.ID)
	assert.Nil(t, saved.Pending)
	assert.NotZero(t, saved.RNGPosition, "random stream position is checkpointed")

	w := do(t, h, http.MethodGet, base+"/journal?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var journal JournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Entries, 1)
	assert.Equal(t, 2, journal.Entries[0].Turn)
	assert.Equal(t, []string{"You pounce on a vole."}, journal.Entries[0].Lines)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, base+"/journal?limit=x", nil).Code)
}

func TestAnimalHandler_DeadAnimal(t *testing.T) {
	store := testStorage()
	h := newTestRouter(store)
	a := createAnimal(t, h, map[string]any{"sex": "male"})

	saved, _ := store.LoadAnimal(context.Background(), a.ID)
	saved.Alive = false
	saved.CauseOfDeath = "Starvation"
	require.NoError(t, store.SaveAnimal(context.Background(), saved))

	w := do(t, h, http.MethodPost, "/v1/animals/"+a.ID.String()+"/turns", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAnimalHandler_Rest(t *testing.T) {
	store := testStorage()
	h := newTestRouter(store)
	a := createAnimal(t, h, map[string]any{"sex": "male"})

	saved, _ := store.LoadAnimal(context.Background(), a.ID)
	saved.Afflictions = []affliction.Instance{
		{Kind: affliction.KindInjury, DefinitionID: "rival-bite"},
		{Kind: affliction.KindParasite, DefinitionID: "heartworm"},
		{Kind: affliction.KindInjury, DefinitionID: "torn-pad"},
	}
	require.NoError(t, store.SaveAnimal(context.Background(), saved))
	path := "/v1/animals/" + a.ID.String() + "/rest"

	idx := 0
	w := do(t, h, http.MethodPut, path, RestRequest{InjuryIndex: &idx, Resting: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp AnimalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Afflictions, 3)
	assert.Equal(t, sim.AfflictionStatus{
		Index: 0, Kind: affliction.KindInjury, ID: "rival-bite", Name: "Rival Bite",
		Severity: affliction.Minor, Resting: true,
	}, resp.Afflictions[0])
	if resp.Afflictions[2].Severity != affliction.Severe {
		t.Errorf("Expected torn-pad to be severe, got %q", resp.Afflictions[2].Severity)
	}
	saved, _ = store.LoadAnimal(context.Background(), a.ID)
	assert.True(t, saved.Afflictions[0].Resting)
	assert.False(t, saved.Afflictions[2].Resting)

	w = do(t, h, http.MethodPut, path, RestRequest{Resting: true})
	require.Equal(t, http.StatusOK, w.Code)
	saved, _ = store.LoadAnimal(context.Background(), a.ID)
	assert.True(t, saved.Afflictions[2].Resting)
	assert.False(t, saved.Afflictions[1].Resting)

	idx = 1
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, path, RestRequest{InjuryIndex: &idx, Resting: true}).Code)
	idx = 9
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, path, RestRequest{InjuryIndex: &idx, Resting: true}).Code)
}

func TestSpeciesHandler(t *testing.T) {
	h := newTestRouter(testStorage())

	w := do(t, h, http.MethodGet, "/v1/species", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SpeciesListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Species, 2)
	assert.Equal(t, "gray-wolf", resp.Species[0].ID)
	assert.Equal(t, "Red Fox", resp.Species[1].Name)
	assert.Equal(t, species.UnitWeek, resp.Species[0].TurnUnit)
}

func TestSimulators_InvalidContent(t *testing.T) {
	store := storage.NewMockStorage()
	cfg := testConfig("gray-wolf", "Gray Wolf")
	cfg.DefaultRegion = ""
	store.AddSpecies(&species.Bundle{Config: cfg})

	_, err := NewSimulators(store, testLogger()).Get(context.Background(), "gray-wolf")
	assert.ErrorIs(t, err, species.ErrInvalidConfig)

	h := newTestRouter(store)
	w := do(t, h, http.MethodPost, "/v1/animals", map[string]any{"sex": "male"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
