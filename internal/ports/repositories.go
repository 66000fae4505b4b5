package ports

import (
	"context"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// BeliefRepository defines persistence for element scores, pairwise
// interactions and combo usage counters.
type BeliefRepository interface {
	ListScores(ctx context.Context, brandID string) ([]*models.ElementScore, error)
	UpsertScore(ctx context.Context, score *models.ElementScore) error
	ListInteractions(ctx context.Context, brandID string) ([]*models.ElementInteraction, error)
	UpsertInteraction(ctx context.Context, interaction *models.ElementInteraction) error
	ListComboUsage(ctx context.Context, brandID string) ([]*models.ComboUsage, error)
	// IncrementComboUsage bumps the counter and last-used timestamp for a
	// canonical combo key, inserting the row on first use.
	IncrementComboUsage(ctx context.Context, brandID, comboKey string, usedAt time.Time) error
}

// TemplateRepository defines operations for template persistence.
type TemplateRepository interface {
	GetByID(ctx context.Context, id string) (*models.Template, error)
	ListByBrand(ctx context.Context, brandID string) ([]*models.Template, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
}

// WhitespaceRepository persists scan results with a generation swap:
// a scan inserts a full new generation, flips the current pointer, then
// deletes superseded generations. Readers only ever see one complete
// generation.
type WhitespaceRepository interface {
	InsertGeneration(ctx context.Context, brandID string, generation int64, candidates []*models.WhitespaceCandidate) error
	SetCurrentGeneration(ctx context.Context, brandID string, generation int64) error
	DeleteGenerationsBefore(ctx context.Context, brandID string, generation int64) error
	CurrentGeneration(ctx context.Context, brandID string) (int64, error)
	ListCurrent(ctx context.Context, brandID string) ([]*models.WhitespaceCandidate, error)
}

// VisualRepository persists embeddings, style clusters and per-ad reward
// aggregates. Cluster sets swap by generation like whitespace scans.
type VisualRepository interface {
	SaveEmbedding(ctx context.Context, embedding *models.VisualEmbedding) error
	ListEmbeddings(ctx context.Context, brandID string) ([]*models.VisualEmbedding, error)
	ListRewards(ctx context.Context, brandID string) ([]*models.AdReward, error)
	InsertClusterGeneration(ctx context.Context, brandID string, generation int64, clusters []*models.VisualStyleCluster) error
	SetCurrentClusterGeneration(ctx context.Context, brandID string, generation int64) error
	DeleteClusterGenerationsBefore(ctx context.Context, brandID string, generation int64) error
	CurrentClusterGeneration(ctx context.Context, brandID string) (int64, error)
	ListCurrentClusters(ctx context.Context, brandID string) ([]*models.VisualStyleCluster, error)
}

// ExperimentRepository defines experiment and arm persistence. Status
// moves go through the compare-and-set update so a scheduled analysis
// job cannot race manual operator action.
type ExperimentRepository interface {
	Create(ctx context.Context, experiment *models.Experiment) error
	GetByID(ctx context.Context, id string) (*models.Experiment, error)
	ListByStatus(ctx context.Context, brandID, status string) ([]*models.Experiment, error)
	// TransitionStatus updates status only when the stored value still
	// matches from, returning domain.ErrStatusConflict otherwise.
	TransitionStatus(ctx context.Context, id, from, to string) error
	UpdateArmStats(ctx context.Context, arm *models.ExperimentArm) error
	RecordConclusion(ctx context.Context, id string, winningArmID *string, grade string, concludedAt time.Time) error
}

// LineageRepository persists the append-only evolution graph and the
// winner views derived from reward aggregates.
type LineageRepository interface {
	InsertEdge(ctx context.Context, edge *models.AdLineage) error
	// CountIterations is the number of children already generated from
	// one parent ad.
	CountIterations(ctx context.Context, parentAdID string) (int, error)
	MaxRound(ctx context.Context, rootAdID string) (int, error)
	ListEdges(ctx context.Context, rootAdID string) ([]*models.AdLineage, error)
	ListWinners(ctx context.Context, brandID string, minReward float64, minImpressions int64) ([]*models.WinnerAd, error)
}

// TransactionManager coordinates multi-repository writes.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator produces prefixed unique identifiers.
type IDGenerator interface {
	Generate(prefix string) string
}
