package handlers

import (
	"log/slog"
	"net/http"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
)

type ExperimentsHandler struct {
	service *services.ExperimentService
}

func NewExperimentsHandler(service *services.ExperimentService) *ExperimentsHandler {
	return &ExperimentsHandler{service: service}
}

// Create serves POST /api/v1/experiments.
func (h *ExperimentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.CreateExperimentRequest](r, w)
	if !ok {
		return
	}

	exp, err := h.service.Create(r.Context(), req.ToModel())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, exp, http.StatusCreated)
}

// Get serves GET /api/v1/experiments/{id}.
func (h *ExperimentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "Experiment ID")
	if !ok {
		return
	}

	exp, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, exp, http.StatusOK)
}

// Start serves POST /api/v1/experiments/{id}/start.
func (h *ExperimentsHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "Experiment ID")
	if !ok {
		return
	}

	if err := h.service.Start(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordStats serves PUT /api/v1/experiments/{id}/arms.
func (h *ExperimentsHandler) RecordStats(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "Experiment ID")
	if !ok {
		return
	}
	req, ok := decodeJSON[dto.ArmStatsRequest](r, w)
	if !ok {
		return
	}
	if len(req.Arms) == 0 {
		respondError(w, "validation_error", "arms is required", http.StatusBadRequest)
		return
	}

	if err := h.service.RecordArmStats(r.Context(), id, req.Arms); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analyze serves POST /api/v1/experiments/{id}/analyze.
func (h *ExperimentsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := validateURLParam(r, w, "id", "Experiment ID")
	if !ok {
		return
	}

	analysis, err := h.service.Analyze(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "experiment analysis failed",
			"experiment_id", id, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, analysis, http.StatusOK)
}
