package models

import "time"

// WhitespaceCandidate is an untested element-value pair predicted to
// perform well. Candidate sets are replaced wholesale per scan generation.
type WhitespaceCandidate struct {
	ID                 string    `json:"id"`
	BrandID            string    `json:"brand_id"`
	NameA              string    `json:"name_a"`
	ValueA             string    `json:"value_a"`
	NameB              string    `json:"name_b"`
	ValueB             string    `json:"value_b"`
	BaseScore          float64   `json:"base_score"`
	SynergyBonus       float64   `json:"synergy_bonus"`
	NoveltyBonus       float64   `json:"novelty_bonus"`
	PredictedPotential float64   `json:"predicted_potential"`
	UsageCount         int       `json:"usage_count"`
	Rank               int       `json:"rank"`
	Generation         int64     `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

// PairKey returns the canonical identity of the pair: the two
// (name, value) halves ordered so that the lexicographically smaller
// name comes first. Re-running a scan upserts on this key.
func (w *WhitespaceCandidate) PairKey() (string, string, string, string) {
	if w.NameA < w.NameB || (w.NameA == w.NameB && w.ValueA <= w.ValueB) {
		return w.NameA, w.ValueA, w.NameB, w.ValueB
	}
	return w.NameB, w.ValueB, w.NameA, w.ValueA
}
