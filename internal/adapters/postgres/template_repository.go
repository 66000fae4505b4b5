package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type TemplateRepository struct {
	BaseRepository
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

const templateColumns = `
	id, brand_id, category, asset_types, awareness_stage, audiences,
	elements, is_unused, last_used_at, created_at`

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + templateColumns + `
		FROM creative_templates
		WHERE id = $1`

	return scanTemplate(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *TemplateRepository) ListByBrand(ctx context.Context, brandID string) ([]*models.Template, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + templateColumns + `
		FROM creative_templates
		WHERE brand_id = $1
		ORDER BY created_at`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE creative_templates
		SET is_unused = false,
		    last_used_at = $1
		WHERE id = $2`

	result, err := r.conn(ctx).Exec(ctx, query, usedAt, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var t models.Template
	var elements []byte

	err := row.Scan(
		&t.ID,
		&t.BrandID,
		&t.Category,
		&t.AssetTypes,
		&t.AwarenessStage,
		&t.Audiences,
		&elements,
		&t.IsUnused,
		&t.LastUsedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalJSON(elements, &t.Elements); err != nil {
		return nil, err
	}
	return &t, nil
}
