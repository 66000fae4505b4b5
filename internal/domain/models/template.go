package models

import "time"

// Template is one candidate creative template.
type Template struct {
	ID             string            `json:"id"`
	BrandID        string            `json:"brand_id"`
	Category       string            `json:"category"`
	AssetTypes     []string          `json:"asset_types"`
	AwarenessStage string            `json:"awareness_stage"`
	Audiences      []string          `json:"audiences"`
	Elements       map[string]string `json:"elements"` // dimension name -> value
	IsUnused       bool              `json:"is_unused"`
	LastUsedAt     *time.Time        `json:"last_used_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// LastUsedAgeDays returns whole days since the template was last used,
// or 0 for a never-used template.
func (t *Template) LastUsedAgeDays(now time.Time) float64 {
	if t.IsUnused || t.LastUsedAt == nil {
		return 0
	}
	return now.Sub(*t.LastUsedAt).Hours() / 24
}

// SelectionContext carries the per-request signals scorers read.
// Absent fields mean "no signal": scorers degrade to a neutral value.
type SelectionContext struct {
	BrandID        string   `json:"brand_id"`
	AssetTypes     []string `json:"asset_types,omitempty"`
	Category       string   `json:"category,omitempty"`
	AwarenessStage string   `json:"awareness_stage,omitempty"`
	Audience       string   `json:"audience,omitempty"`
	Now            time.Time
}
