package models

import "time"

// VisualEmbedding is the vector descriptor of one generated ad, with the
// categorical descriptors the vision pipeline attached to it.
type VisualEmbedding struct {
	ID          string            `json:"id"`
	BrandID     string            `json:"brand_id"`
	AdID        string            `json:"ad_id"`
	Vector      []float32         `json:"-"` // pgvector column, fixed dimensionality per brand
	Descriptors map[string]string `json:"descriptors"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NoiseLabel marks points DBSCAN left unclustered.
const NoiseLabel = -1

// VisualStyleCluster groups visually similar ads. Cluster sets are
// replaced wholesale per clustering generation; labels are contiguous
// from 0 within a generation.
type VisualStyleCluster struct {
	ID          string              `json:"id"`
	BrandID     string              `json:"brand_id"`
	Label       int                 `json:"label"`
	Centroid    []float32           `json:"-"`
	Size        int                 `json:"size"`
	MemberAdIDs []string            `json:"member_ad_ids"`
	Descriptors map[string][]string `json:"descriptors"` // key -> up to 3 most frequent values
	AvgReward   *float64            `json:"avg_reward,omitempty"`
	Generation  int64               `json:"-"`
	CreatedAt   time.Time           `json:"created_at"`
}

// AdReward is the aggregated reward figure for one ad, resolved by the
// caller by following ad -> run -> reward records.
type AdReward struct {
	AdID        string  `json:"ad_id"`
	Reward      float64 `json:"reward"`
	Impressions int64   `json:"impressions"`
}
