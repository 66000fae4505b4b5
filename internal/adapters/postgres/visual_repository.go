package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

type VisualRepository struct {
	BaseRepository
}

func NewVisualRepository(pool *pgxpool.Pool) *VisualRepository {
	return &VisualRepository{
		BaseRepository: NewBaseRepository(pool),
	}
}

func (r *VisualRepository) ListEmbeddings(ctx context.Context, brandID string) ([]*models.VisualEmbedding, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, brand_id, ad_id, embedding, descriptors, created_at
		FROM creative_visual_embeddings
		WHERE brand_id = $1
		ORDER BY created_at`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var embeddings []*models.VisualEmbedding
	for rows.Next() {
		var e models.VisualEmbedding
		var vec pgvector.Vector
		var descriptors []byte
		if err := rows.Scan(&e.ID, &e.BrandID, &e.AdID, &vec, &descriptors, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Vector = vec.Slice()
		if err := unmarshalJSON(descriptors, &e.Descriptors); err != nil {
			return nil, err
		}
		embeddings = append(embeddings, &e)
	}
	return embeddings, rows.Err()
}

func (r *VisualRepository) SaveEmbedding(ctx context.Context, e *models.VisualEmbedding) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	descriptors, err := marshalJSON(e.Descriptors)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO creative_visual_embeddings (
			id, brand_id, ad_id, embedding, descriptors, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (ad_id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
		    descriptors = EXCLUDED.descriptors`

	_, err = r.conn(ctx).Exec(ctx, query,
		e.ID,
		e.BrandID,
		e.AdID,
		pgvector.NewVector(e.Vector),
		descriptors,
		e.CreatedAt,
	)
	return err
}

// ListRewards aggregates reward figures per ad by following ad -> run ->
// reward records.
func (r *VisualRepository) ListRewards(ctx context.Context, brandID string) ([]*models.AdReward, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT a.id, AVG(rw.reward), SUM(rn.impressions)
		FROM creative_ads a
		JOIN creative_ad_runs rn ON rn.ad_id = a.id
		JOIN creative_run_rewards rw ON rw.run_id = rn.id
		WHERE a.brand_id = $1
		GROUP BY a.id`

	rows, err := r.conn(ctx).Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []*models.AdReward
	for rows.Next() {
		var rw models.AdReward
		if err := rows.Scan(&rw.AdID, &rw.Reward, &rw.Impressions); err != nil {
			return nil, err
		}
		rewards = append(rewards, &rw)
	}
	return rewards, rows.Err()
}

func (r *VisualRepository) InsertClusterGeneration(ctx context.Context, brandID string, generation int64, clusters []*models.VisualStyleCluster) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO creative_visual_clusters (
			id, brand_id, generation, label, centroid, size,
			member_ad_ids, descriptors, avg_reward, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	for _, c := range clusters {
		descriptors, err := marshalJSON(c.Descriptors)
		if err != nil {
			return err
		}
		_, err = r.conn(ctx).Exec(ctx, query,
			c.ID,
			brandID,
			generation,
			c.Label,
			pgvector.NewVector(c.Centroid),
			c.Size,
			c.MemberAdIDs,
			descriptors,
			c.AvgReward,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *VisualRepository) SetCurrentClusterGeneration(ctx context.Context, brandID string, generation int64) error {
	return setGenerationPointer(ctx, r.conn, brandID, generationKindCluster, generation)
}

func (r *VisualRepository) DeleteClusterGenerationsBefore(ctx context.Context, brandID string, generation int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM creative_visual_clusters
		WHERE brand_id = $1 AND generation < $2`

	_, err := r.conn(ctx).Exec(ctx, query, brandID, generation)
	return err
}

func (r *VisualRepository) CurrentClusterGeneration(ctx context.Context, brandID string) (int64, error) {
	return getGenerationPointer(ctx, r.conn, brandID, generationKindCluster)
}

func (r *VisualRepository) ListCurrentClusters(ctx context.Context, brandID string) ([]*models.VisualStyleCluster, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT c.id, c.brand_id, c.generation, c.label, c.centroid, c.size,
		       c.member_ad_ids, c.descriptors, c.avg_reward, c.created_at
		FROM creative_visual_clusters c
		JOIN creative_generation_pointers p
		  ON p.brand_id = c.brand_id AND p.kind = $2 AND p.generation = c.generation
		WHERE c.brand_id = $1
		ORDER BY c.label`

	rows, err := r.conn(ctx).Query(ctx, query, brandID, generationKindCluster)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []*models.VisualStyleCluster
	for rows.Next() {
		var c models.VisualStyleCluster
		var centroid pgvector.Vector
		var descriptors []byte
		err := rows.Scan(
			&c.ID,
			&c.BrandID,
			&c.Generation,
			&c.Label,
			&centroid,
			&c.Size,
			&c.MemberAdIDs,
			&descriptors,
			&c.AvgReward,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		c.Centroid = centroid.Slice()
		if err := unmarshalJSON(descriptors, &c.Descriptors); err != nil {
			return nil, err
		}
		clusters = append(clusters, &c)
	}
	return clusters, rows.Err()
}
