package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/metrics"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/experiment"
	"github.com/RyeMcKenzie81/creative-engine/internal/ports"
)

// ExperimentService owns the experiment lifecycle: creation, launch,
// stat ingestion and the daily analysis pass. Status moves ride on the
// repository's compare-and-set so the scheduler and manual operator
// action cannot both conclude an experiment.
type ExperimentService struct {
	experiments ports.ExperimentRepository
	engine      *experiment.Engine
	ids         ports.IDGenerator
}

func NewExperimentService(
	experiments ports.ExperimentRepository,
	engine *experiment.Engine,
	ids ports.IDGenerator,
) *ExperimentService {
	return &ExperimentService{
		experiments: experiments,
		engine:      engine,
		ids:         ids,
	}
}

// Create registers a draft experiment with its arms.
func (s *ExperimentService) Create(ctx context.Context, exp *models.Experiment) (*models.Experiment, error) {
	if exp.BrandID == "" || exp.Name == "" {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "experiment brand id and name are required")
	}
	if len(exp.Arms) < 2 {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "an experiment needs at least two arms")
	}

	now := time.Now()
	exp.ID = s.ids.Generate("cex")
	exp.Status = models.StatusDraft
	exp.CreatedAt = now
	exp.UpdatedAt = now
	for _, arm := range exp.Arms {
		arm.ID = s.ids.Generate("cea")
		arm.ExperimentID = exp.ID
	}

	if err := s.experiments.Create(ctx, exp); err != nil {
		return nil, domain.NewDomainError(err, "failed to create experiment")
	}
	return exp, nil
}

// Start launches a draft experiment.
func (s *ExperimentService) Start(ctx context.Context, id string) error {
	return s.experiments.TransitionStatus(ctx, id, models.StatusDraft, models.StatusRunning)
}

// RecordArmStats ingests fresh arm outcomes for a live experiment.
func (s *ExperimentService) RecordArmStats(ctx context.Context, experimentID string, arms []*models.ExperimentArm) error {
	exp, err := s.experiments.GetByID(ctx, experimentID)
	if err != nil {
		return err
	}
	if models.IsTerminal(exp.Status) {
		return domain.NewDomainError(domain.ErrExperimentFinal, "cannot record stats on a finished experiment")
	}

	known := make(map[string]bool, len(exp.Arms))
	for _, arm := range exp.Arms {
		known[arm.ID] = true
	}
	for _, arm := range arms {
		if !known[arm.ID] {
			return domain.NewDomainError(domain.ErrArmOutcomeMismatch, "arm "+arm.ID+" does not belong to experiment "+experimentID)
		}
	}

	for _, arm := range arms {
		if err := s.experiments.UpdateArmStats(ctx, arm); err != nil {
			return err
		}
	}
	return nil
}

// Analyze runs one analysis pass over a running experiment: it claims
// the experiment by moving it to analyzing, evaluates the decision rules
// and applies the resulting transition.
func (s *ExperimentService) Analyze(ctx context.Context, id string) (*experiment.Analysis, error) {
	ctx, span := otel.Tracer("creative-engine").Start(ctx, "experiment.analyze")
	defer span.End()

	if err := s.experiments.TransitionStatus(ctx, id, models.StatusRunning, models.StatusAnalyzing); err != nil {
		return nil, err
	}

	exp, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	analysis, err := s.engine.Analyze(exp, time.Now())
	if err != nil {
		// Release the claim so the next pass can retry.
		if rbErr := s.experiments.TransitionStatus(ctx, id, models.StatusAnalyzing, models.StatusRunning); rbErr != nil {
			slog.ErrorContext(ctx, "failed to release analysis claim",
				"experiment_id", id, "error", rbErr)
		}
		return nil, err
	}

	if err := s.experiments.TransitionStatus(ctx, id, models.StatusAnalyzing, analysis.NextStatus); err != nil {
		return nil, err
	}
	if models.IsTerminal(analysis.NextStatus) {
		grade := analysis.Grade
		if grade == "" {
			grade = models.ConclusionGradeFor(exp.Measurement)
		}
		if err := s.experiments.RecordConclusion(ctx, id, analysis.WinningArmID, grade, time.Now()); err != nil {
			return nil, err
		}
	}

	metrics.ExperimentAnalysesTotal.WithLabelValues(string(analysis.Decision)).Inc()
	slog.InfoContext(ctx, "experiment analyzed",
		"experiment_id", id,
		"decision", analysis.Decision,
		"next_status", analysis.NextStatus,
		"best_arm", analysis.BestArmID)
	return analysis, nil
}

// AnalyzeAll analyzes every running experiment of a brand, skipping
// experiments claimed by a concurrent writer.
func (s *ExperimentService) AnalyzeAll(ctx context.Context, brandID string) ([]*experiment.Analysis, error) {
	running, err := s.experiments.ListByStatus(ctx, brandID, models.StatusRunning)
	if err != nil {
		return nil, err
	}

	var analyses []*experiment.Analysis
	for _, exp := range running {
		analysis, err := s.Analyze(ctx, exp.ID)
		if err != nil {
			if errors.Is(err, domain.ErrStatusConflict) {
				slog.WarnContext(ctx, "experiment claimed concurrently, skipping",
					"experiment_id", exp.ID)
				continue
			}
			return analyses, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// Get returns one experiment with its arms.
func (s *ExperimentService) Get(ctx context.Context, id string) (*models.Experiment, error) {
	return s.experiments.GetByID(ctx, id)
}
