package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, errorType string, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.NewErrorResponse(errorType, message, status))
}

// respondServiceError maps domain errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrExperimentNotFound):
		respondError(w, "not_found", err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNoCandidates),
		errors.Is(err, domain.ErrUnknownScorer),
		errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrEmptyEmbedding),
		errors.Is(err, domain.ErrArmOutcomeMismatch),
		errors.Is(err, domain.ErrConversionsExceeded),
		errors.Is(err, domain.ErrNotAWinner),
		errors.Is(err, domain.ErrNoMutableVariables):
		respondError(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrExperimentFinal),
		errors.Is(err, domain.ErrExperimentNotLive),
		errors.Is(err, domain.ErrStatusConflict):
		respondError(w, "status_conflict", err.Error(), http.StatusConflict)
	case domain.IsCapacityError(err):
		respondError(w, "capacity_reached", err.Error(), http.StatusConflict)
	default:
		respondError(w, "internal_error", "Internal server error", http.StatusInternalServerError)
	}
}

// validateURLParam validates and returns a URL parameter
func validateURLParam(r *http.Request, w http.ResponseWriter, paramName, errorField string) (string, bool) {
	value := chi.URLParam(r, paramName)
	if value == "" {
		respondError(w, "invalid_request", errorField+" is required", http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// requireBrandQuery validates the brand_id query parameter
func requireBrandQuery(r *http.Request, w http.ResponseWriter) (string, bool) {
	brandID := r.URL.Query().Get("brand_id")
	if brandID == "" {
		respondError(w, "invalid_request", "brand_id query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return brandID, true
}

// decodeJSON decodes JSON request body with error handling
func decodeJSON[T any](r *http.Request, w http.ResponseWriter) (*T, bool) {
	// Add request body size limit
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024) // 1MB limit

	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}
