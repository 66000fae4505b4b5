package dto

import (
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/selection"
)

type SelectRequest struct {
	Context     *models.SelectionContext `json:"context"`
	Mode        string                   `json:"mode,omitempty"`
	Count       int                      `json:"count,omitempty"`
	RecordUsage bool                     `json:"record_usage,omitempty"`
}

type PickedTemplate struct {
	Template *models.Template `json:"template"`
	Score    float64          `json:"score"`
}

type SelectResponse struct {
	Picked   []PickedTemplate `json:"picked"`
	Fallback string           `json:"fallback,omitempty"`
}

func SelectResponseFromResult(result *selection.Result) *SelectResponse {
	resp := &SelectResponse{Picked: make([]PickedTemplate, 0, len(result.Picked))}
	for _, p := range result.Picked {
		resp.Picked = append(resp.Picked, PickedTemplate{Template: p.Template, Score: p.Score})
	}
	if result.Fallback != selection.FallbackNone {
		resp.Fallback = string(result.Fallback)
	}
	return resp
}

type FatigueScoreRequest struct {
	BrandID     string   `json:"brand_id"`
	TemplateIDs []string `json:"template_ids"`
}

type FatigueScoreResponse struct {
	Scores map[string]float64 `json:"scores"`
}
