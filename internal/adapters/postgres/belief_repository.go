package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type BeliefRepository struct {
	BaseRepository
}

func NewBeliefRepository(pool *pgxpool.Pool) *BeliefRepository {
	return &BeliefRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

func (r *BeliefRepository) ListScores(ctx context.Context, brandID string) ([]*models.ElementScore, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, name, value, alpha, beta, observations, updated_at
		FROM creative_element_scores
		WHERE brand_id = $1
		ORDER BY name, value`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.ElementScore
	for rows.Next() {
		var s models.ElementScore
		if err := rows.Scan(&s.ID, &s.BrandID, &s.Name, &s.Value, &s.Alpha, &s.Beta, &s.Observations, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, &s)
	}
	return scores, rows.Err()
}

func (r *BeliefRepository) UpsertScore(ctx context.Context, score *models.ElementScore) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_element_scores (
			id, brand_id, name, value, alpha, beta, observations, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (brand_id, name, value) DO UPDATE
		SET alpha = EXCLUDED.alpha,
		    beta = EXCLUDED.beta,
		    observations = EXCLUDED.observations,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query,
		score.ID,
		score.BrandID,
		score.Name,
		score.Value,
		score.Alpha,
		score.Beta,
		score.Observations,
		score.UpdatedAt,
	)
	return err
}

func (r *BeliefRepository) ListInteractions(ctx context.Context, brandID string) ([]*models.ElementInteraction, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, name_a, value_a, name_b, value_b, effect, direction, updated_at
		FROM creative_element_interactions
		WHERE brand_id = $1
		ORDER BY name_a, value_a, name_b, value_b`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interactions []*models.ElementInteraction
	for rows.Next() {
		var in models.ElementInteraction
		if err := rows.Scan(&in.ID, &in.BrandID, &in.NameA, &in.ValueA, &in.NameB, &in.ValueB, &in.Effect, &in.Direction, &in.UpdatedAt); err != nil {
			return nil, err
		}
		interactions = append(interactions, &in)
	}
	return interactions, rows.Err()
}

func (r *BeliefRepository) UpsertInteraction(ctx context.Context, in *models.ElementInteraction) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_element_interactions (
			id, brand_id, name_a, value_a, name_b, value_b, effect, direction, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (brand_id, name_a, value_a, name_b, value_b) DO UPDATE
		SET effect = EXCLUDED.effect,
		    direction = EXCLUDED.direction,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query,
		in.ID,
		in.BrandID,
		in.NameA,
		in.ValueA,
		in.NameB,
		in.ValueB,
		in.Effect,
		in.Direction,
		in.UpdatedAt,
	)
	return err
}

func (r *BeliefRepository) ListComboUsage(ctx context.Context, brandID string) ([]*models.ComboUsage, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT brand_id, combo_key, count, last_used_at
		FROM creative_combo_usage
		WHERE brand_id = $1
		ORDER BY combo_key`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usage []*models.ComboUsage
	for rows.Next() {
		u, err := scanComboUsage(rows)
		if err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

func (r *BeliefRepository) IncrementComboUsage(ctx context.Context, brandID, comboKey string, usedAt time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_combo_usage (brand_id, combo_key, count, last_used_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (brand_id, combo_key) DO UPDATE
		SET count = creative_combo_usage.count + 1,
		    last_used_at = EXCLUDED.last_used_at`

	_, err := r.conn(ctx).Exec(ctx, query, brandID, comboKey, usedAt)
	return err
}

func scanComboUsage(row pgx.Row) (*models.ComboUsage, error) {
	var u models.ComboUsage
	if err := row.Scan(&u.BrandID, &u.ComboKey, &u.Count, &u.LastUsedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
