package services

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/metrics"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/fatigue"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/selection"
	"github.com/RyeMcKenzie81/creative-engine/internal/ports"
)

// SelectionService serves template selection requests: it assembles the
// belief snapshot, runs the scoring pipeline and records usage so the
// next request sees fresh fatigue state.
type SelectionService struct {
	templates ports.TemplateRepository
	beliefs   ports.BeliefRepository
	tx        ports.TransactionManager
	rng       *rand.Rand
}

func NewSelectionService(
	templates ports.TemplateRepository,
	beliefs ports.BeliefRepository,
	tx ports.TransactionManager,
	rng *rand.Rand,
) *SelectionService {
	return &SelectionService{
		templates: templates,
		beliefs:   beliefs,
		tx:        tx,
		rng:       rng,
	}
}

// SelectionRequest is one selection event.
type SelectionRequest struct {
	Context *models.SelectionContext
	Mode    selection.Mode
	Count   int
	// RecordUsage marks picked templates used and bumps combo counters.
	// Dry-run callers leave it false.
	RecordUsage bool
}

// Select picks templates for the request's brand and context.
func (s *SelectionService) Select(ctx context.Context, req *SelectionRequest) (*selection.Result, error) {
	start := time.Now()

	if req.Context == nil || req.Context.BrandID == "" {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "selection context with brand id is required")
	}
	if req.Context.Now.IsZero() {
		req.Context.Now = time.Now()
	}

	snap, err := s.loadSnapshot(ctx, req.Context.BrandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to load belief snapshot")
	}

	candidates, err := s.templates.ListByBrand(ctx, req.Context.BrandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list candidate templates")
	}

	pipeline, err := selection.NewDefaultPipeline(snap, req.Mode, s.rng)
	if err != nil {
		return nil, err
	}
	result, err := pipeline.Select(candidates, req.Context, req.Count)
	if err != nil {
		return nil, err
	}

	if req.RecordUsage {
		if err := s.recordUsage(ctx, req.Context.BrandID, result, req.Context.Now); err != nil {
			return nil, domain.NewDomainError(err, "failed to record template usage")
		}
	}

	metrics.SelectionsTotal.WithLabelValues(string(req.Mode), string(result.Fallback)).Inc()
	metrics.SelectionDuration.Observe(time.Since(start).Seconds())

	if result.Fallback != selection.FallbackNone {
		slog.WarnContext(ctx, "selection used fallback ladder",
			"brand_id", req.Context.BrandID,
			"fallback", result.Fallback,
			"candidates", len(candidates))
	}
	return result, nil
}

// FatigueScores computes the current fatigue multiplier for each
// requested template of a brand.
func (s *SelectionService) FatigueScores(ctx context.Context, brandID string, templateIDs []string) (map[string]float64, error) {
	if brandID == "" {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "brand id is required")
	}
	if len(templateIDs) == 0 {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "at least one template id is required")
	}

	snap, err := s.loadSnapshot(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to load belief snapshot")
	}

	scorer := fatigue.NewScorer(snap)
	now := time.Now()
	scores := make(map[string]float64, len(templateIDs))
	for _, id := range templateIDs {
		tmpl, err := s.templates.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if tmpl.BrandID != brandID {
			return nil, domain.NewDomainError(domain.ErrInvalidInput, "template "+id+" belongs to another brand")
		}
		scores[id] = scorer.Score(tmpl, now)
	}
	return scores, nil
}

func (s *SelectionService) loadSnapshot(ctx context.Context, brandID string) (*belief.Snapshot, error) {
	scores, err := s.beliefs.ListScores(ctx, brandID)
	if err != nil {
		return nil, err
	}
	interactions, err := s.beliefs.ListInteractions(ctx, brandID)
	if err != nil {
		return nil, err
	}
	usage, err := s.beliefs.ListComboUsage(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return belief.NewSnapshot(scores, interactions, usage), nil
}

// recordUsage marks templates used and bumps combo counters atomically,
// so a crash between the two writes cannot skew fatigue state.
func (s *SelectionService) recordUsage(ctx context.Context, brandID string, result *selection.Result, usedAt time.Time) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, picked := range result.Picked {
			if err := s.templates.MarkUsed(ctx, picked.Template.ID, usedAt); err != nil {
				return err
			}
			if len(picked.Template.Elements) == 0 {
				continue
			}
			key := belief.ComboKey(picked.Template.Elements)
			if err := s.beliefs.IncrementComboUsage(ctx, brandID, key, usedAt); err != nil {
				return err
			}
		}
		return nil
	})
}
