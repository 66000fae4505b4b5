package handlers

import (
	"log/slog"
	"net/http"

	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
)

type WhitespaceHandler struct {
	service *services.WhitespaceService
}

func NewWhitespaceHandler(service *services.WhitespaceService) *WhitespaceHandler {
	return &WhitespaceHandler{service: service}
}

// Scan serves POST /api/v1/whitespace/scan.
func (h *WhitespaceHandler) Scan(w http.ResponseWriter, r *http.Request) {
	brandID, ok := requireBrandQuery(r, w)
	if !ok {
		return
	}

	candidates, err := h.service.Scan(r.Context(), brandID)
	if err != nil {
		slog.ErrorContext(r.Context(), "whitespace scan failed",
			"brand_id", brandID, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, candidates, http.StatusOK)
}

// List serves GET /api/v1/whitespace.
func (h *WhitespaceHandler) List(w http.ResponseWriter, r *http.Request) {
	brandID, ok := requireBrandQuery(r, w)
	if !ok {
		return
	}

	candidates, err := h.service.ListCurrent(r.Context(), brandID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, candidates, http.StatusOK)
}
