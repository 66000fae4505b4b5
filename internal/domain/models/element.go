package models

import "time"

// The six creative element dimensions tracked per brand.
const (
	DimHookType         = "hook_type"
	DimColorMode        = "color_mode"
	DimTemplateCategory = "template_category"
	DimCanvasSize       = "canvas_size"
	DimAwarenessStage   = "awareness_stage"
	DimContentSource    = "content_source"
)

// Dimensions lists the tracked element dimensions in canonical order.
func Dimensions() []string {
	return []string{
		DimAwarenessStage,
		DimCanvasSize,
		DimColorMode,
		DimContentSource,
		DimHookType,
		DimTemplateCategory,
	}
}

// ElementScore is the Beta(α,β) belief about one element value's success
// rate, plus how many outcomes informed it.
type ElementScore struct {
	ID           string    `json:"id"`
	BrandID      string    `json:"brand_id"`
	Name         string    `json:"name"`
	Value        string    `json:"value"`
	Alpha        float64   `json:"alpha"`
	Beta         float64   `json:"beta"`
	Observations int       `json:"observations"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Mean returns the posterior mean α/(α+β).
func (e *ElementScore) Mean() float64 {
	return e.Alpha / (e.Alpha + e.Beta)
}

// Variance returns the posterior variance αβ/((α+β)²(α+β+1)).
func (e *ElementScore) Variance() float64 {
	sum := e.Alpha + e.Beta
	return (e.Alpha * e.Beta) / (sum * sum * (sum + 1))
}

// Interaction directions.
const (
	InteractionSynergy  = "synergy"
	InteractionConflict = "conflict"
	InteractionNeutral  = "neutral"
)

// ElementInteraction records pairwise synergy or conflict between two
// concrete element values.
type ElementInteraction struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	NameA     string    `json:"name_a"`
	ValueA    string    `json:"value_a"`
	NameB     string    `json:"name_b"`
	ValueB    string    `json:"value_b"`
	Effect    float64   `json:"effect"`
	Direction string    `json:"direction"` // synergy, conflict, neutral
	UpdatedAt time.Time `json:"updated_at"`
}

// ComboUsage counts how often a canonical element combination was used.
type ComboUsage struct {
	BrandID    string     `json:"brand_id"`
	ComboKey   string     `json:"combo_key"`
	Count      int        `json:"count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
