package handlers

import (
	"log/slog"
	"net/http"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
)

type EvolutionHandler struct {
	service *services.EvolutionService
}

func NewEvolutionHandler(service *services.EvolutionService) *EvolutionHandler {
	return &EvolutionHandler{service: service}
}

// SelectMutation serves POST /api/v1/evolution/select-mutation.
func (h *EvolutionHandler) SelectMutation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.SelectMutationRequest](r, w)
	if !ok {
		return
	}
	if req.Winner == nil {
		respondError(w, "validation_error", "winner is required", http.StatusBadRequest)
		return
	}

	plan, err := h.service.PlanMutation(r.Context(), req.Winner, req.Mode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, plan, http.StatusOK)
}

// Evolve serves POST /api/v1/evolution/evolve.
func (h *EvolutionHandler) Evolve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.EvolveRequest](r, w)
	if !ok {
		return
	}
	if req.BrandID == "" {
		respondError(w, "validation_error", "brand_id is required", http.StatusBadRequest)
		return
	}

	planned, err := h.service.EvolveWinners(r.Context(), req.BrandID, req.Mode)
	if err != nil {
		slog.ErrorContext(r.Context(), "winner evolution failed",
			"brand_id", req.BrandID, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, planned, http.StatusOK)
}

// FanOut serves POST /api/v1/evolution/fan-out.
func (h *EvolutionHandler) FanOut(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.FanOutRequest](r, w)
	if !ok {
		return
	}

	plan, err := h.service.PlanFanOut(r.Context(), req.Variations, req.CanvasSizes, req.ColorModes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, plan, http.StatusOK)
}

// Lineage serves GET /api/v1/lineage/{adID}.
func (h *EvolutionHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	adID, ok := validateURLParam(r, w, "adID", "Ad ID")
	if !ok {
		return
	}

	edges, err := h.service.Lineage(r.Context(), adID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, edges, http.StatusOK)
}
