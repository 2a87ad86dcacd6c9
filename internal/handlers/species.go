package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/survival-engine/internal/storage"
)

type SpeciesSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ScientificName string `json:"scientific_name,omitempty"`
	Description    string `json:"description,omitempty"`
	TurnUnit       string `json:"turn_unit"`
}

type SpeciesListResponse struct {
	Species []SpeciesSummary `json:"species"`
}

type SpeciesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSpeciesHandler(store storage.Storage, logger *slog.Logger) *SpeciesHandler {
	return &SpeciesHandler{storage: store, logger: logger}
}

// ServeHTTP lists every species with content on disk. Species whose content
// fails to load are skipped with a warning.
func (h *SpeciesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListSpecies(r.Context())
	if err != nil {
		h.logger.Error("Failed to list species", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list species")
		return
	}

	resp := SpeciesListResponse{Species: make([]SpeciesSummary, 0, len(ids))}
	for _, id := range ids {
		b, err := h.storage.LoadSpecies(r.Context(), id)
		if err != nil {
			h.logger.Warn("Skipping species", "species", id, "error", err)
			continue
		}
		resp.Species = append(resp.Species, SpeciesSummary{
			ID:             b.Config.ID,
			Name:           b.Config.Name,
			ScientificName: b.Config.ScientificName,
			Description:    b.Config.Description,
			TurnUnit:       b.Config.Unit(),
		})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
