package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/metrics"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/cluster"
	"github.com/RyeMcKenzie81/creative-engine/internal/ports"
)

// ClusterService runs visual style clustering as a periodic batch job
// and serves diversity checks against the current cluster generation.
type ClusterService struct {
	visuals   ports.VisualRepository
	clusterer *cluster.Clusterer
	tx        ports.TransactionManager
	ids       ports.IDGenerator
}

func NewClusterService(
	visuals ports.VisualRepository,
	tx ports.TransactionManager,
	ids ports.IDGenerator,
) *ClusterService {
	return &ClusterService{
		visuals:   visuals,
		clusterer: cluster.NewClusterer(),
		tx:        tx,
		ids:       ids,
	}
}

// SaveEmbedding registers or refreshes the visual embedding of one ad.
func (s *ClusterService) SaveEmbedding(ctx context.Context, e *models.VisualEmbedding) (*models.VisualEmbedding, error) {
	if e.BrandID == "" || e.AdID == "" {
		return nil, domain.NewDomainError(domain.ErrInvalidInput, "embedding brand id and ad id are required")
	}
	if len(e.Vector) == 0 {
		return nil, domain.NewDomainError(domain.ErrEmptyEmbedding, "embedding vector is required")
	}

	e.ID = s.ids.Generate("cve")
	e.CreatedAt = time.Now()
	if err := s.visuals.SaveEmbedding(ctx, e); err != nil {
		return nil, domain.NewDomainError(err, "failed to save embedding")
	}
	return e, nil
}

// RunResult summarizes one clustering run.
type RunResult struct {
	Clusters   []*models.VisualStyleCluster `json:"clusters"`
	NoiseCount int                          `json:"noise_count"`
	Generation int64                        `json:"generation"`
}

// Run reclusters a brand's ad visuals and swaps the result in as a new
// generation.
func (s *ClusterService) Run(ctx context.Context, brandID string) (*RunResult, error) {
	ctx, span := otel.Tracer("creative-engine").Start(ctx, "cluster.run")
	defer span.End()
	start := time.Now()

	embeddings, err := s.visuals.ListEmbeddings(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list embeddings")
	}
	rewards, err := s.visuals.ListRewards(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list rewards")
	}

	clusters, noiseAds, err := s.clusterer.Cluster(brandID, embeddings, rewards)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	current, err := s.visuals.CurrentClusterGeneration(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to resolve cluster generation")
	}
	next := current + 1
	for _, c := range clusters {
		c.ID = s.ids.Generate("cvc")
		c.Generation = next
		c.CreatedAt = now
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.visuals.InsertClusterGeneration(ctx, brandID, next, clusters); err != nil {
			return err
		}
		if err := s.visuals.SetCurrentClusterGeneration(ctx, brandID, next); err != nil {
			return err
		}
		return s.visuals.DeleteClusterGenerationsBefore(ctx, brandID, next)
	})
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to swap cluster generation")
	}

	metrics.ClusterRunsTotal.Inc()
	metrics.ClusterRunDuration.Observe(time.Since(start).Seconds())
	slog.InfoContext(ctx, "clustering run complete",
		"brand_id", brandID,
		"generation", next,
		"clusters", len(clusters),
		"noise", len(noiseAds))

	return &RunResult{Clusters: clusters, NoiseCount: len(noiseAds), Generation: next}, nil
}

// DiversityResult reports how a candidate visual relates to the current
// clusters.
type DiversityResult struct {
	IsDiverse          bool    `json:"is_diverse"`
	MostSimilarCluster int     `json:"most_similar_cluster"`
	Similarity         float64 `json:"similarity"`
}

// CheckDiversity compares a candidate embedding against the brand's
// current cluster centroids.
func (s *ClusterService) CheckDiversity(ctx context.Context, brandID string, vector []float32) (*DiversityResult, error) {
	clusters, err := s.visuals.ListCurrentClusters(ctx, brandID)
	if err != nil {
		return nil, domain.NewDomainError(err, "failed to list clusters")
	}

	label, similarity, ok, err := s.clusterer.CheckDiversity(vector, clusters)
	if err != nil {
		return nil, err
	}
	return &DiversityResult{IsDiverse: ok, MostSimilarCluster: label, Similarity: similarity}, nil
}

// ListCurrent returns the brand's current style clusters.
func (s *ClusterService) ListCurrent(ctx context.Context, brandID string) ([]*models.VisualStyleCluster, error) {
	return s.visuals.ListCurrentClusters(ctx, brandID)
}
