package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type LineageRepository struct {
	BaseRepository
}

func NewLineageRepository(pool *pgxpool.Pool) *LineageRepository {
	return &LineageRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

func (r *LineageRepository) InsertEdge(ctx context.Context, edge *models.AdLineage) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_ad_lineage (
			id, brand_id, root_ad_id, parent_ad_id, child_ad_id,
			mode, variable_changed, round, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.conn(ctx).Exec(ctx, query,
		edge.ID,
		edge.BrandID,
		edge.RootAdID,
		edge.ParentAdID,
		edge.ChildAdID,
		edge.Mode,
		edge.VariableChanged,
		edge.Round,
		edge.CreatedAt,
	)
	return err
}

func (r *LineageRepository) CountIterations(ctx context.Context, parentAdID string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM creative_ad_lineage WHERE parent_ad_id = $1`,
		parentAdID,
	).Scan(&count)
	return count, err
}

func (r *LineageRepository) MaxRound(ctx context.Context, rootAdID string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var round int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(round), 0) FROM creative_ad_lineage WHERE root_ad_id = $1`,
		rootAdID,
	).Scan(&round)
	return round, err
}

func (r *LineageRepository) ListEdges(ctx context.Context, rootAdID string) ([]*models.AdLineage, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, root_ad_id, parent_ad_id, child_ad_id,
		       mode, variable_changed, round, created_at
		FROM creative_ad_lineage
		WHERE root_ad_id = $1
		ORDER BY round, created_at`

	rows, err := r.conn(ctx).Query(ctx, query, rootAdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []*models.AdLineage
	for rows.Next() {
		var e models.AdLineage
		if err := rows.Scan(&e.ID, &e.BrandID, &e.RootAdID, &e.ParentAdID, &e.ChildAdID,
			&e.Mode, &e.VariableChanged, &e.Round, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, &e)
	}
	return edges, rows.Err()
}

// ListWinners resolves ads whose aggregated reward and impressions both
// clear the winner thresholds, along with their lineage position.
func (r *LineageRepository) ListWinners(ctx context.Context, brandID string, minReward float64, minImpressions int64) ([]*models.WinnerAd, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT a.id, a.brand_id, COALESCE(l.root_ad_id, a.id), a.elements,
		       AVG(rw.reward), SUM(rn.impressions), COALESCE(MAX(l.round), 0)
		FROM creative_ads a
		JOIN creative_ad_runs rn ON rn.ad_id = a.id
		JOIN creative_run_rewards rw ON rw.run_id = rn.id
		LEFT JOIN creative_ad_lineage l ON l.child_ad_id = a.id
		WHERE a.brand_id = $1
		GROUP BY a.id, a.brand_id, l.root_ad_id, a.elements
		HAVING AVG(rw.reward) >= $2 AND SUM(rn.impressions) >= $3
		ORDER BY AVG(rw.reward) DESC`

	rows, err := r.conn(ctx).Query(ctx, query, brandID, minReward, minImpressions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var winners []*models.WinnerAd
	for rows.Next() {
		var w models.WinnerAd
		var elements []byte
		if err := rows.Scan(&w.AdID, &w.BrandID, &w.RootAdID, &elements, &w.Reward, &w.Impressions, &w.Round); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(elements, &w.Elements); err != nil {
			return nil, err
		}
		winners = append(winners, &w)
	}
	return winners, rows.Err()
}
