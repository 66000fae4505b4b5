package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type ExperimentRepository struct {
	BaseRepository
}

func NewExperimentRepository(pool *pgxpool.Pool) *ExperimentRepository {
	return &ExperimentRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

func (r *ExperimentRepository) Create(ctx context.Context, exp *models.Experiment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	protocol, err := marshalJSON(exp.Protocol)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO creative_experiments (
			id, brand_id, name, status, metric_kind, direction, measurement,
			protocol, started_at, concluded_at, winning_arm_id, conclusion_grade,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err = r.conn(ctx).Exec(ctx, query,
		exp.ID,
		exp.BrandID,
		exp.Name,
		exp.Status,
		exp.MetricKind,
		exp.Direction,
		exp.Measurement,
		protocol,
		exp.StartedAt,
		exp.ConcludedAt,
		exp.WinningArmID,
		exp.ConclusionGrade,
		exp.CreatedAt,
		exp.UpdatedAt,
	)
	if err != nil {
		return err
	}

	armQuery := `
		INSERT INTO creative_experiment_arms (
			id, experiment_id, name, is_control, impressions, conversions,
			sample_count, sample_mean, sample_variance
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	for _, arm := range exp.Arms {
		_, err := r.conn(ctx).Exec(ctx, armQuery,
			arm.ID,
			exp.ID,
			arm.Name,
			arm.IsControl,
			arm.Impressions,
			arm.Conversions,
			arm.SampleCount,
			arm.SampleMean,
			arm.SampleVariance,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const experimentColumns = `
	id, brand_id, name, status, metric_kind, direction, measurement,
	protocol, started_at, concluded_at, winning_arm_id, conclusion_grade,
	created_at, updated_at`

func (r *ExperimentRepository) GetByID(ctx context.Context, id string) (*models.Experiment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + experimentColumns + `
		FROM creative_experiments
		WHERE id = $1`

	exp, err := scanExperiment(r.conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	arms, err := r.listArms(ctx, exp.ID)
	if err != nil {
		return nil, err
	}
	exp.Arms = arms
	return exp, nil
}

func (r *ExperimentRepository) ListByStatus(ctx context.Context, brandID, status string) ([]*models.Experiment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + experimentColumns + `
		FROM creative_experiments
		WHERE brand_id = $1 AND status = $2
		ORDER BY created_at`

	rows, err := r.conn(ctx).Query(ctx, query, brandID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiments []*models.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, exp := range experiments {
		arms, err := r.listArms(ctx, exp.ID)
		if err != nil {
			return nil, err
		}
		exp.Arms = arms
	}
	return experiments, nil
}

// TransitionStatus moves an experiment between statuses with a
// compare-and-set guard: the update only applies while the stored status
// still matches from. A lost race surfaces as ErrStatusConflict so the
// daily analysis job and manual operator action cannot both conclude the
// same experiment.
func (r *ExperimentRepository) TransitionStatus(ctx context.Context, id, from, to string) error {
	if !models.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE creative_experiments
		SET status = $1,
		    started_at = CASE WHEN $1 = 'running' AND started_at IS NULL THEN NOW() ELSE started_at END,
		    updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := r.conn(ctx).Exec(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		// Either the row is missing or another writer got there first.
		current, err := r.currentStatus(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s, found %s", domain.ErrStatusConflict, from, current)
	}
	return nil
}

func (r *ExperimentRepository) UpdateArmStats(ctx context.Context, arm *models.ExperimentArm) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if arm.Conversions > arm.Impressions {
		return fmt.Errorf("%w: arm %s", domain.ErrConversionsExceeded, arm.ID)
	}

	query := `
		UPDATE creative_experiment_arms
		SET impressions = $1,
		    conversions = $2,
		    sample_count = $3,
		    sample_mean = $4,
		    sample_variance = $5
		WHERE id = $6`

	result, err := r.conn(ctx).Exec(ctx, query,
		arm.Impressions,
		arm.Conversions,
		arm.SampleCount,
		arm.SampleMean,
		arm.SampleVariance,
		arm.ID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ExperimentRepository) RecordConclusion(ctx context.Context, id string, winningArmID *string, grade string, concludedAt time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE creative_experiments
		SET winning_arm_id = $1,
		    conclusion_grade = $2,
		    concluded_at = $3,
		    updated_at = NOW()
		WHERE id = $4`

	result, err := r.conn(ctx).Exec(ctx, query, winningArmID, grade, concludedAt, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrExperimentNotFound
	}
	return nil
}

func (r *ExperimentRepository) currentStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := r.conn(ctx).QueryRow(ctx, `SELECT status FROM creative_experiments WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrExperimentNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *ExperimentRepository) listArms(ctx context.Context, experimentID string) ([]*models.ExperimentArm, error) {
	query := `
		SELECT id, experiment_id, name, is_control, impressions, conversions,
		       sample_count, sample_mean, sample_variance
		FROM creative_experiment_arms
		WHERE experiment_id = $1
		ORDER BY is_control DESC, name`

	rows, err := r.conn(ctx).Query(ctx, query, experimentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var arms []*models.ExperimentArm
	for rows.Next() {
		var arm models.ExperimentArm
		err := rows.Scan(
			&arm.ID,
			&arm.ExperimentID,
			&arm.Name,
			&arm.IsControl,
			&arm.Impressions,
			&arm.Conversions,
			&arm.SampleCount,
			&arm.SampleMean,
			&arm.SampleVariance,
		)
		if err != nil {
			return nil, err
		}
		arms = append(arms, &arm)
	}
	return arms, rows.Err()
}

func scanExperiment(row pgx.Row) (*models.Experiment, error) {
	var exp models.Experiment
	var protocol []byte

	err := row.Scan(
		&exp.ID,
		&exp.BrandID,
		&exp.Name,
		&exp.Status,
		&exp.MetricKind,
		&exp.Direction,
		&exp.Measurement,
		&protocol,
		&exp.StartedAt,
		&exp.ConcludedAt,
		&exp.WinningArmID,
		&exp.ConclusionGrade,
		&exp.CreatedAt,
		&exp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExperimentNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(protocol, &exp.Protocol); err != nil {
		return nil, err
	}
	return &exp, nil
}
