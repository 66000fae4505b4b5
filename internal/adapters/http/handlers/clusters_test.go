package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

func TestClustersHandler_DiversityCheck_TooSimilar(t *testing.T) {
	visuals := &stubVisuals{clusters: []*models.VisualStyleCluster{
		{Label: 0, Centroid: []float32{1, 0, 0}},
	}}
	svc := services.NewClusterService(visuals, stubTx{}, &stubIDs{})
	handler := NewClustersHandler(svc)

	body := `{"brand_id":"brand_1","vector":[1,0.01,0]}`
	req := httptest.NewRequest("POST", "/api/v1/clusters/diversity-check", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.DiversityCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp services.DiversityResult
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsDiverse {
		t.Error("expected near-parallel vector to fail the diversity check")
	}
	if resp.MostSimilarCluster != 0 {
		t.Errorf("expected cluster 0 to be most similar, got %d", resp.MostSimilarCluster)
	}
}

func TestClustersHandler_DiversityCheck_NoClusters(t *testing.T) {
	svc := services.NewClusterService(&stubVisuals{}, stubTx{}, &stubIDs{})
	handler := NewClustersHandler(svc)

	body := `{"brand_id":"brand_1","vector":[1,0,0]}`
	req := httptest.NewRequest("POST", "/api/v1/clusters/diversity-check", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.DiversityCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp services.DiversityResult
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsDiverse {
		t.Error("expected candidate to pass when no clusters exist")
	}
}

func TestClustersHandler_DiversityCheck_MissingVector(t *testing.T) {
	svc := services.NewClusterService(&stubVisuals{}, stubTx{}, &stubIDs{})
	handler := NewClustersHandler(svc)

	body := `{"brand_id":"brand_1"}`
	req := httptest.NewRequest("POST", "/api/v1/clusters/diversity-check", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.DiversityCheck(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}
