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
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/whitespace"
	"github.com/RyeMcKenzie81/creative-engine/internal/ports"
)

// WhitespaceService runs the periodic whitespace scan: it rebuilds the
// candidate set from the current belief snapshot and swaps it in as a
// new generation so readers never see a half-replaced set.
type WhitespaceService struct {
	beliefs    ports.BeliefRepository
	whitespace ports.WhitespaceRepository
	tx         ports.TransactionManager
	ids        ports.IDGenerator
}

func NewWhitespaceService(
	beliefs ports.BeliefRepository,
	ws ports.WhitespaceRepository,
	tx ports.TransactionManager,
	ids ports.IDGenerator,
) *WhitespaceService {
	return &WhitespaceService{
		beliefs:    beliefs,
		whitespace: ws,
		tx:         tx,
		ids:        ids,
	}
}

// Scan recomputes whitespace candidates for one brand.
func (s *WhitespaceService) Scan(ctx context.Context, brandID string) ([]*models.WhitespaceCandidate, error) {
	ctx, span := otel.Tracer("creative-engine").Start(ctx, "whitespace.scan")
	defer span.End()

	scores, err := s.beliefs.ListScores(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list element scores")
	}
	interactions, err := s.beliefs.ListInteractions(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list interactions")
	}
	usage, err := s.beliefs.ListComboUsage(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list combo usage")
	}

	snap := belief.NewSnapshot(scores, interactions, usage)
	candidates := whitespace.NewIdentifier(snap).Identify(brandID)

	now := time.Now()
	for _, c := range candidates {
		c.ID = s.ids.Generate("cws")
		c.CreatedAt = now
	}

	current, err := s.whitespace.CurrentGeneration(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to resolve current generation")
	}
	next := current + 1

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.whitespace.InsertGeneration(ctx, brandID, next, candidates); err != nil {
			return err
		}
		if err := s.whitespace.SetCurrentGeneration(ctx, brandID, next); err != nil {
			return err
		}
		return s.whitespace.DeleteGenerationsBefore(ctx, brandID, next)
	})
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to swap whitespace generation")
	}

	metrics.WhitespaceScansTotal.Inc()
	metrics.WhitespaceCandidatesFound.Observe(float64(len(candidates)))
	slog.InfoContext(ctx, "whitespace scan complete",
		"brand_id", brandID,
		"generation", next,
		"candidates", len(candidates))
	return candidates, nil
}

// ListCurrent returns the candidates of the current generation.
func (s *WhitespaceService) ListCurrent(ctx context.Context, brandID string) ([]*models.WhitespaceCandidate, error) {
	return s.whitespace.ListCurrent(ctx, brandID)
}
