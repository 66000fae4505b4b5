package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// Generation pointer kinds. Whitespace scans and cluster runs share the
// pointer table; readers resolve the current generation first and only
// see rows from one complete generation.
const (
	generationKindWhitespace = "whitespace"
	generationKindCluster    = "visual_cluster"
)

type WhitespaceRepository struct {
	BaseRepository
}

func NewWhitespaceRepository(pool *pgxpool.Pool) *WhitespaceRepository {
	return &WhitespaceRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

func (r *WhitespaceRepository) InsertGeneration(ctx context.Context, brandID string, generation int64, candidates []*models.WhitespaceCandidate) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_whitespace_candidates (
			id, brand_id, generation, name_a, value_a, name_b, value_b,
			base_score, synergy_bonus, novelty_bonus, predicted_potential,
			usage_count, rank, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	for _, c := range candidates {
		_, err := r.conn(ctx).Exec(ctx, query,
			c.ID,
			brandID,
			generation,
			c.NameA,
			c.ValueA,
			c.NameB,
			c.ValueB,
			c.BaseScore,
			c.SynergyBonus,
			c.NoveltyBonus,
			c.PredictedPotential,
			c.UsageCount,
			c.Rank,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *WhitespaceRepository) SetCurrentGeneration(ctx context.Context, brandID string, generation int64) error {
	return setGenerationPointer(ctx, r.conn, brandID, generationKindWhitespace, generation)
}

func (r *WhitespaceRepository) DeleteGenerationsBefore(ctx context.Context, brandID string, generation int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM creative_whitespace_candidates
		WHERE brand_id = $1 AND generation < $2`

	_, err := r.conn(ctx).Exec(ctx, query, brandID, generation)
	return err
}

func (r *WhitespaceRepository) CurrentGeneration(ctx context.Context, brandID string) (int64, error) {
	return getGenerationPointer(ctx, r.conn, brandID, generationKindWhitespace)
}

func (r *WhitespaceRepository) ListCurrent(ctx context.Context, brandID string) ([]*models.WhitespaceCandidate, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT c.id, c.brand_id, c.generation, c.name_a, c.value_a, c.name_b, c.value_b,
		       c.base_score, c.synergy_bonus, c.novelty_bonus, c.predicted_potential,
		       c.usage_count, c.rank, c.created_at
		FROM creative_whitespace_candidates c
		JOIN creative_generation_pointers p
		  ON p.brand_id = c.brand_id AND p.kind = $2 AND p.generation = c.generation
		WHERE c.brand_id = $1
		ORDER BY c.rank, c.predicted_potential DESC`

	rows, err := r.conn(ctx).Query(ctx, query, brandID, generationKindWhitespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.WhitespaceCandidate
	for rows.Next() {
		var c models.WhitespaceCandidate
		err := rows.Scan(
			&c.ID,
			&c.BrandID,
			&c.Generation,
			&c.NameA,
			&c.ValueA,
			&c.NameB,
			&c.ValueB,
			&c.BaseScore,
			&c.SynergyBonus,
			&c.NoveltyBonus,
			&c.PredictedPotential,
			&c.UsageCount,
			&c.Rank,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, &c)
	}
	return candidates, rows.Err()
}

// connGetter matches BaseRepository.conn so the pointer helpers work for
// any repository embedding it.
type connGetter func(ctx context.Context) interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func setGenerationPointer(ctx context.Context, conn connGetter, brandID, kind string, generation int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_generation_pointers (brand_id, kind, generation)
		VALUES ($1, $2, $3)
		ON CONFLICT (brand_id, kind) DO UPDATE
		SET generation = EXCLUDED.generation`

	_, err := conn(ctx).Exec(ctx, query, brandID, kind, generation)
	return err
}

func getGenerationPointer(ctx context.Context, conn connGetter, brandID, kind string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT generation FROM creative_generation_pointers
		WHERE brand_id = $1 AND kind = $2`

	var generation int64
	err := conn(ctx).QueryRow(ctx, query, brandID, kind).Scan(&generation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return generation, nil
}
