package dto

import (
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type CreateArmRequest struct {
	Name      string `json:"name"`
	IsControl bool   `json:"is_control"`
}

type CreateExperimentRequest struct {
	BrandID     string                    `json:"brand_id"`
	Name        string                    `json:"name"`
	MetricKind  string                    `json:"metric_kind"`
	Direction   string                    `json:"direction"`
	Measurement string                    `json:"measurement"`
	Protocol    models.ExperimentProtocol `json:"protocol"`
	Arms        []CreateArmRequest        `json:"arms"`
}

func (r *CreateExperimentRequest) ToModel() *models.Experiment {
	exp := &models.Experiment{
		BrandID:     r.BrandID,
		Name:        r.Name,
		MetricKind:  r.MetricKind,
		Direction:   r.Direction,
		Measurement: r.Measurement,
		Protocol:    r.Protocol,
	}
	for _, arm := range r.Arms {
		exp.Arms = append(exp.Arms, &models.ExperimentArm{
			Name:      arm.Name,
			IsControl: arm.IsControl,
		})
	}
	return exp
}

type ArmStatsRequest struct {
	Arms []*models.ExperimentArm `json:"arms"`
}
