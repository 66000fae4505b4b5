package handlers

import (
	"log/slog"
	"net/http"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/selection"
)

type SelectionHandler struct {
	service      *services.SelectionService
	defaultMode  selection.Mode
	defaultCount int
}

func NewSelectionHandler(service *services.SelectionService, defaultMode string, defaultCount int) *SelectionHandler {
	return &SelectionHandler{
		service:      service,
		defaultMode:  selection.Mode(defaultMode),
		defaultCount: defaultCount,
	}
}

// Select serves POST /api/v1/selection.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.SelectRequest](r, w)
	if !ok {
		return
	}
	if req.Context == nil || req.Context.BrandID == "" {
		respondError(w, "validation_error", "context.brand_id is required", http.StatusBadRequest)
		return
	}

	mode := selection.Mode(req.Mode)
	if req.Mode == "" {
		mode = h.defaultMode
	}
	count := req.Count
	if count == 0 {
		count = h.defaultCount
	}

	result, err := h.service.Select(r.Context(), &services.SelectionRequest{
		Context:     req.Context,
		Mode:        mode,
		Count:       count,
		RecordUsage: req.RecordUsage,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "selection failed",
			"brand_id", req.Context.BrandID, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, dto.SelectResponseFromResult(result), http.StatusOK)
}

// FatigueScore serves POST /api/v1/fatigue-score.
func (h *SelectionHandler) FatigueScore(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.FatigueScoreRequest](r, w)
	if !ok {
		return
	}

	scores, err := h.service.FatigueScores(r.Context(), req.BrandID, req.TemplateIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, &dto.FatigueScoreResponse{Scores: scores}, http.StatusOK)
}
