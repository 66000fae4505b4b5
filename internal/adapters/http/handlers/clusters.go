package handlers

import (
	"log/slog"
	"net/http"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type ClustersHandler struct {
	service *services.ClusterService
}

func NewClustersHandler(service *services.ClusterService) *ClustersHandler {
	return &ClustersHandler{service: service}
}

// Rebuild serves POST /api/v1/clusters/rebuild.
func (h *ClustersHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	brandID, ok := requireBrandQuery(r, w)
	if !ok {
		return
	}

	result, err := h.service.Run(r.Context(), brandID)
	if err != nil {
		slog.ErrorContext(r.Context(), "cluster rebuild failed",
			"brand_id", brandID, "error", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// List serves GET /api/v1/clusters.
func (h *ClustersHandler) List(w http.ResponseWriter, r *http.Request) {
	brandID, ok := requireBrandQuery(r, w)
	if !ok {
		return
	}

	clusters, err := h.service.ListCurrent(r.Context(), brandID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, clusters, http.StatusOK)
}

// SaveEmbedding serves POST /api/v1/embeddings.
func (h *ClustersHandler) SaveEmbedding(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.SaveEmbeddingRequest](r, w)
	if !ok {
		return
	}

	saved, err := h.service.SaveEmbedding(r.Context(), &models.VisualEmbedding{
		BrandID:     req.BrandID,
		AdID:        req.AdID,
		Vector:      req.Vector,
		Descriptors: req.Descriptors,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, saved, http.StatusCreated)
}

// DiversityCheck serves POST /api/v1/clusters/diversity-check.
func (h *ClustersHandler) DiversityCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[dto.DiversityCheckRequest](r, w)
	if !ok {
		return
	}
	if req.BrandID == "" {
		respondError(w, "validation_error", "brand_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Vector) == 0 {
		respondError(w, "validation_error", "vector is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.CheckDiversity(r.Context(), req.BrandID, req.Vector)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, result, http.StatusOK)
}
