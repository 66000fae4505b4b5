package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/metrics"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/evolution"
	"github.com/RyeMcKenzie81/creative-engine/internal/ports"
)

// EvolutionService drives the winner-evolution batch: it finds
// qualifying winners, plans one mutation per winner and records lineage
// edges for the generation pipeline to execute.
type EvolutionService struct {
	lineage  ports.LineageRepository
	beliefs  ports.BeliefRepository
	engine   *evolution.Engine
	criteria evolution.Criteria
	ids      ports.IDGenerator
}

func NewEvolutionService(
	lineage ports.LineageRepository,
	beliefs ports.BeliefRepository,
	engine *evolution.Engine,
	criteria evolution.Criteria,
	ids ports.IDGenerator,
) *EvolutionService {
	return &EvolutionService{
		lineage:  lineage,
		beliefs:  beliefs,
		engine:   engine,
		criteria: criteria,
		ids:      ids,
	}
}

// PlannedEvolution pairs a winner with its planned mutation and the
// pre-allocated child ad id.
type PlannedEvolution struct {
	Winner    *models.WinnerAd    `json:"winner"`
	Mutation  *evolution.Mutation `json:"mutation"`
	ChildAdID string              `json:"child_ad_id"`
}

// EvolveWinners plans one mutation for every qualifying winner of a
// brand. Winners at an iteration or round cap are skipped with a log
// line, not treated as failures.
func (s *EvolutionService) EvolveWinners(ctx context.Context, brandID, mode string) ([]*PlannedEvolution, error) {
	ctx, span := otel.Tracer("creative-engine").Start(ctx, "evolution.evolve_winners")
	defer span.End()

	winners, err := s.lineage.ListWinners(ctx, brandID, s.criteria.MinReward, s.criteria.MinImpressions)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list winners")
	}

	scores, err := s.beliefs.ListScores(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list element scores")
	}
	snap := belief.NewSnapshot(scores, nil, nil)

	var planned []*PlannedEvolution
	for _, winner := range winners {
		plan, err := s.planOne(ctx, winner, snap, mode)
		if err != nil {
			if domain.IsCapacityError(err) {
				metrics.EvolutionCapRejections.Inc()
				slog.InfoContext(ctx, "winner at evolution cap, skipping",
					"ad_id", winner.AdID, "reason", err)
				continue
			}
			return nil, err
		}
		planned = append(planned, plan)
	}

	slog.InfoContext(ctx, "winner evolution planned",
		"brand_id", brandID,
		"mode", mode,
		"winners", len(winners),
		"planned", len(planned))
	return planned, nil
}

// PlanMutation plans a single mutation for one winner, recording the
// lineage edge. Cap errors pass through so callers can distinguish them
// from failures.
func (s *EvolutionService) PlanMutation(ctx context.Context, winner *models.WinnerAd, mode string) (*PlannedEvolution, error) {
	if winner == nil || winner.AdID == "" || winner.BrandID == "" {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "winner ad id and brand id are required")
	}

	scores, err := s.beliefs.ListScores(ctx, winner.BrandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list element scores")
	}
	snap := belief.NewSnapshot(scores, nil, nil)
	return s.planOne(ctx, winner, snap, mode)
}

func (s *EvolutionService) planOne(ctx context.Context, winner *models.WinnerAd, snap *belief.Snapshot, mode string) (*PlannedEvolution, error) {
	iterations, err := s.lineage.CountIterations(ctx, winner.AdID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to count iterations")
	}

	mutation, err := s.engine.SelectMutation(winner, snap, mode, iterations)
	if err != nil {
		return nil, err
	}

	childID := s.ids.Generate("cad")
	edge := mutation.LineageEdge(winner, childID)
	edge.ID = s.ids.Generate("clin")
	edge.CreatedAt = time.Now()
	if err := s.lineage.InsertEdge(ctx, edge); err != nil {
		return nil, domain.NewDomainError(err, "failed to record lineage edge")
	}

	metrics.EvolutionMutationsTotal.WithLabelValues(mutation.Mode).Inc()
	return &PlannedEvolution{
		Winner:    winner,
		Mutation:  mutation,
		ChildAdID: childID,
	}, nil
}

// Lineage returns the mutation edges descending from one root ad.
func (s *EvolutionService) Lineage(ctx context.Context, rootAdID string) ([]*models.AdLineage, error) {
	return s.lineage.ListEdges(ctx, rootAdID)
}

// PlanFanOut validates the width of one generation batch.
func (s *EvolutionService) PlanFanOut(ctx context.Context, variations, canvasSizes, colorModes int) (evolution.FanOutPlan, error) {
	return evolution.ValidateFanOut(slog.Default(), variations, canvasSizes, colorModes)
}
