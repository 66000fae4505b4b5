package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/dto"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
)

func newSelectionHandler(templates *stubTemplates) *SelectionHandler {
	svc := services.NewSelectionService(templates, stubBeliefs{}, stubTx{}, rand.New(rand.NewSource(1)))
	return NewSelectionHandler(svc, "smart_select", 5)
}

func TestSelectionHandler_Select(t *testing.T) {
	handler := newSelectionHandler(&stubTemplates{templates: testTemplates("brand_1", 3)})

	body := `{"context":{"brand_id":"brand_1"},"count":2}`
	req := httptest.NewRequest("POST", "/api/v1/selection", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Select(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dto.SelectResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Picked) != 2 {
		t.Errorf("expected 2 picked templates, got %d", len(resp.Picked))
	}
}

func TestSelectionHandler_Select_MissingBrand(t *testing.T) {
	handler := newSelectionHandler(&stubTemplates{})

	body := `{"context":{},"count":2}`
	req := httptest.NewRequest("POST", "/api/v1/selection", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Select(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestSelectionHandler_Select_NoCandidates(t *testing.T) {
	handler := newSelectionHandler(&stubTemplates{})

	body := `{"context":{"brand_id":"brand_1"},"count":2}`
	req := httptest.NewRequest("POST", "/api/v1/selection", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.Select(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for empty candidate set, got %d", rr.Code)
	}
}

func TestSelectionHandler_FatigueScore(t *testing.T) {
	templates := &stubTemplates{templates: testTemplates("brand_1", 2)}
	handler := newSelectionHandler(templates)

	body := `{"brand_id":"brand_1","template_ids":["tmpl_0","tmpl_1"]}`
	req := httptest.NewRequest("POST", "/api/v1/fatigue-score", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.FatigueScore(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp dto.FatigueScoreResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// Never-used templates score exactly 1.0.
	for id, score := range resp.Scores {
		if score != 1.0 {
			t.Errorf("expected fatigue 1.0 for unused template %s, got %f", id, score)
		}
	}
	if len(resp.Scores) != 2 {
		t.Errorf("expected 2 scores, got %d", len(resp.Scores))
	}
}

func TestSelectionHandler_FatigueScore_UnknownTemplate(t *testing.T) {
	handler := newSelectionHandler(&stubTemplates{})

	body := `{"brand_id":"brand_1","template_ids":["tmpl_missing"]}`
	req := httptest.NewRequest("POST", "/api/v1/fatigue-score", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.FatigueScore(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}
