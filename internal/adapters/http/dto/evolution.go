package dto

import (
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type SelectMutationRequest struct {
	Winner *models.WinnerAd `json:"winner"`
	Mode   string           `json:"mode"`
}

type EvolveRequest struct {
	BrandID string `json:"brand_id"`
	Mode    string `json:"mode"`
}

type FanOutRequest struct {
	Variations  int `json:"variations"`
	CanvasSizes int `json:"canvas_sizes"`
	ColorModes  int `json:"color_modes"`
}
