package models

import "time"

// Evolution modes.
const (
	ModeIterateVariable = "iterate_variable"
	ModeVisualRefresh   = "visual_refresh"
	ModeCrossSize       = "cross_size"
)

// WinnerAd is a qualifying creative considered for evolution.
type WinnerAd struct {
	AdID        string            `json:"ad_id"`
	BrandID     string            `json:"brand_id"`
	RootAdID    string            `json:"root_ad_id"` // first ancestor in the lineage chain
	Elements    map[string]string `json:"elements"`
	Reward      float64           `json:"reward"`
	Impressions int64             `json:"impressions"`
	Round       int               `json:"round"` // 0 for an un-evolved ad
}

// AdLineage is one parent -> child mutation edge. Rows are append-only;
// round numbers strictly increase along a chain from the same root.
type AdLineage struct {
	ID              string    `json:"id"`
	BrandID         string    `json:"brand_id"`
	RootAdID        string    `json:"root_ad_id"`
	ParentAdID      string    `json:"parent_ad_id"`
	ChildAdID       string    `json:"child_ad_id"`
	Mode            string    `json:"mode"`
	VariableChanged string    `json:"variable_changed,omitempty"` // set for iterate_variable
	Round           int       `json:"round"`
	CreatedAt       time.Time `json:"created_at"`
}
