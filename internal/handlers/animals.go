package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwebster45206/survival-engine/internal/logger"
	"github.com/jwebster45206/survival-engine/internal/storage"
	"github.com/jwebster45206/survival-engine/pkg/events"
	"github.com/jwebster45206/survival-engine/pkg/rng"
	"github.com/jwebster45206/survival-engine/pkg/sim"
	"github.com/jwebster45206/survival-engine/pkg/state"
	"github.com/jwebster45206/survival-engine/pkg/stats"
	"github.com/jwebster45206/survival-engine/pkg/world"
)

// CreateAnimalRequest defines the request body for creating a new animal
type CreateAnimalRequest struct {
	Species string    `json:"species,omitempty"` // defaults to the configured species
	Sex     world.Sex `json:"sex"`
	Name    string    `json:"name,omitempty"`
	Seed    *uint64   `json:"seed,omitempty"`
}

type ChoiceRequest struct {
	ChoiceID string `json:"choice_id"`
}

// RestRequest sets the resting flag of one injury, or of every injury when
// InjuryIndex is omitted.
type RestRequest struct {
	InjuryIndex *int `json:"injury_index,omitempty"`
	Resting     bool `json:"resting"`
}

type AnimalResponse struct {
	Animal         *state.Animal          `json:"animal"`
	EffectiveStats stats.Vector           `json:"effective_stats"`
	Afflictions    []sim.AfflictionStatus `json:"affliction_status"`
}

// TurnResponse carries the first half of a turn and, when no choice was
// needed, the completed turn.
type TurnResponse struct {
	Start  *sim.TurnStart  `json:"start"`
	Result *sim.TurnResult `json:"result,omitempty"`
}

type JournalResponse struct {
	Entries []storage.JournalEntry `json:"entries"`
}

type AnimalHandler struct {
	storage        storage.Storage
	sims           *Simulators
	logger         *slog.Logger
	defaultSpecies string
	newSeed        func() uint64
	locks          *animalLocks
}

func NewAnimalHandler(store storage.Storage, sims *Simulators, defaultSpecies string, newSeed func() uint64, logger *slog.Logger) *AnimalHandler {
	if newSeed == nil {
		newSeed = func() uint64 { return uint64(time.Now().UnixNano()) }
	}
	return &AnimalHandler{
		storage:        store,
		sims:           sims,
		logger:         logger,
		defaultSpecies: defaultSpecies,
		newSeed:        newSeed,
		locks:          newAnimalLocks(),
	}
}

// Routes:
// POST /animals              - Create a new animal
// GET  /animals/{id}         - Read an animal
// POST /animals/{id}/turns   - Begin a turn, completing it when no choice is needed
// POST /animals/{id}/choice  - Resolve the pending event and complete the turn
// PUT  /animals/{id}/rest    - Toggle injury rest
// GET  /animals/{id}/journal - Completed turn narratives
func (h *AnimalHandler) Routes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.handleRead)
		r.Post("/turns", h.handleTurn)
		r.Post("/choice", h.handleChoice)
		r.Put("/rest", h.handleRest)
		r.Get("/journal", h.handleJournal)
	})
}

func (h *AnimalHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateAnimalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body: "+err.Error())
		return
	}
	if req.Sex == "" {
		writeError(w, h.logger, http.StatusBadRequest, "sex field is required")
		return
	}
	speciesID := strings.TrimSpace(req.Species)
	if speciesID == "" {
		speciesID = h.defaultSpecies
	}

	s, err := h.sims.Get(r.Context(), speciesID)
	if err != nil {
		if errors.Is(err, storage.ErrSpeciesNotFound) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load species: "+err.Error())
		return
	}

	seed := h.newSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	a := s.NewAnimal(req.Sex, seed)
	a.Name = strings.TrimSpace(req.Name)

	if err := h.storage.SaveAnimal(r.Context(), a); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save animal")
		return
	}
	logger.WithAnimalID(h.logger, a.ID.String()).Info("Animal created", "species", speciesID, "sex", a.Sex, "seed", seed)
	h.writeAnimal(w, s, a, http.StatusCreated)
}

func (h *AnimalHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.animalID(w, r)
	if !ok {
		return
	}
	a, ok := h.load(w, r, id)
	if !ok {
		return
	}
	s, ok := h.simulator(w, r, a)
	if !ok {
		return
	}
	h.writeAnimal(w, s, a, http.StatusOK)
}

func (h *AnimalHandler) handleTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.animalID(w, r)
	if !ok {
		return
	}
	unlock := h.locks.Lock(id)
	defer unlock()

	a, ok := h.load(w, r, id)
	if !ok {
		return
	}
	s, ok := h.simulator(w, r, a)
	if !ok {
		return
	}

	src := sim.Stream(a)
	rnd := rng.New(src)
	start, err := s.BeginTurn(a, s.NextClock(a, rnd), rnd)
	if err != nil {
		h.writeSimError(w, a, err)
		return
	}

	resp := TurnResponse{Start: start}
	if !start.Prompt.NeedsChoice() {
		res, err := s.FinishTurn(a, "", rnd)
		if err != nil {
			h.writeSimError(w, a, err)
			return
		}
		res.Start = start
		resp.Result = res
	}
	sim.Checkpoint(a, src)

	if !h.persist(w, r, a, journalEntries(start, resp.Result)) {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnimalHandler) handleChoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.animalID(w, r)
	if !ok {
		return
	}
	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body: "+err.Error())
		return
	}

	unlock := h.locks.Lock(id)
	defer unlock()

	a, ok := h.load(w, r, id)
	if !ok {
		return
	}
	if a.Pending == nil {
		writeError(w, h.logger, http.StatusConflict, events.ErrNoPendingEvent.Error())
		return
	}
	s, ok := h.simulator(w, r, a)
	if !ok {
		return
	}

	src := sim.Stream(a)
	res, err := s.FinishTurn(a, req.ChoiceID, rng.New(src))
	if err != nil {
		h.writeSimError(w, a, err)
		return
	}
	sim.Checkpoint(a, src)

	if !h.persist(w, r, a, journalEntries(nil, res)) {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *AnimalHandler) handleRest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.animalID(w, r)
	if !ok {
		return
	}
	var req RestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body: "+err.Error())
		return
	}

	unlock := h.locks.Lock(id)
	defer unlock()

	a, ok := h.load(w, r, id)
	if !ok {
		return
	}
	s, ok := h.simulator(w, r, a)
	if !ok {
		return
	}
	if req.InjuryIndex == nil {
		a.RestAll(req.Resting)
	} else if err := a.SetResting(*req.InjuryIndex, req.Resting); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if !h.persist(w, r, a, nil) {
		return
	}
	h.writeAnimal(w, s, a, http.StatusOK)
}

func (h *AnimalHandler) handleJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.animalID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.storage.Journal(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("Failed to read journal", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read journal")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, JournalResponse{Entries: entries})
}

func (h *AnimalHandler) animalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("Invalid animal ID", "id", raw, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid animal ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AnimalHandler) load(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*state.Animal, bool) {
	a, err := h.storage.LoadAnimal(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load animal")
		return nil, false
	}
	if a == nil {
		writeError(w, h.logger, http.StatusNotFound, "Animal not found")
		return nil, false
	}
	return a, true
}

func (h *AnimalHandler) simulator(w http.ResponseWriter, r *http.Request, a *state.Animal) (*sim.Simulator, bool) {
	s, err := h.sims.Get(r.Context(), a.SpeciesID)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load species: "+err.Error())
		return nil, false
	}
	return s, true
}

// writeAnimal responds with the animal, its effective stats and the resolved
// status of its afflictions.
func (h *AnimalHandler) writeAnimal(w http.ResponseWriter, s *sim.Simulator, a *state.Animal, status int) {
	afflictions, err := s.AfflictionStatus(a)
	if err != nil {
		logger.WithError(logger.WithAnimalID(h.logger, a.ID.String()), err).Error("Failed to resolve afflictions")
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, h.logger, status, AnimalResponse{Animal: a, EffectiveStats: a.EffectiveStats(), Afflictions: afflictions})
}

// persist saves the animal and then appends any journal entries.
func (h *AnimalHandler) persist(w http.ResponseWriter, r *http.Request, a *state.Animal, entries []storage.JournalEntry) bool {
	if err := h.storage.SaveAnimal(r.Context(), a); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save animal")
		return false
	}
	if err := h.storage.AppendJournal(r.Context(), a.ID, entries...); err != nil {
		logger.WithError(logger.WithAnimalID(h.logger, a.ID.String()), err).Warn("Failed to append journal")
	}
	return true
}

// writeSimError maps turn loop errors to status codes. Configuration errors
// are logged; player mistakes are not.
func (h *AnimalHandler) writeSimError(w http.ResponseWriter, a *state.Animal, err error) {
	switch {
	case errors.Is(err, events.ErrUnknownChoice):
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, events.ErrNoPendingEvent), errors.Is(err, sim.ErrDead):
		writeError(w, h.logger, http.StatusConflict, err.Error())
	default:
		logger.WithError(logger.WithAnimalID(h.logger, a.ID.String()), err).Error("Turn failed")
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
	}
}

// journalEntries records what the player saw: the opening of a turn that
// stopped on a choice, and every completed turn.
func journalEntries(start *sim.TurnStart, res *sim.TurnResult) []storage.JournalEntry {
	now := time.Now()
	var out []storage.JournalEntry
	if start != nil && res == nil {
		lines := append([]string{}, start.Narrative...)
		if start.Prompt != nil && !start.Resumed {
			lines = append(lines, start.Prompt.Narrative)
		}
		if len(lines) > 0 && !start.Resumed {
			out = append(out, storage.JournalEntry{
				Turn: start.Turn, Season: start.Clock.Season, Month: start.Clock.Month, Year: start.Clock.Year,
				Lines: lines, RecordedAt: now,
			})
		}
	}
	if res != nil {
		var lines []string
		if start != nil {
			lines = append(lines, start.Narrative...)
			if start.Prompt != nil {
				lines = append(lines, start.Prompt.Narrative)
			}
		}
		lines = append(lines, res.Narrative...)
		out = append(out, storage.JournalEntry{
			Turn: res.Turn, Season: res.Clock.Season, Month: res.Clock.Month, Year: res.Clock.Year,
			Lines: lines, Outcome: string(res.Outcome), RecordedAt: now,
		})
	}
	return out
}
