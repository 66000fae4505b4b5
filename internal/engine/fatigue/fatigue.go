// Package fatigue converts recency of use into a decayed desirability
// multiplier for templates and their element combinations.
package fatigue

import (
	"math"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
)

const (
	// TemplateLambda gives a half-life of ~13.86 days.
	TemplateLambda = 0.05
	// ComboLambda gives a half-life of ~23.1 days.
	ComboLambda = 0.03

	// MinComboObservations below which the combo modifier stays neutral.
	MinComboObservations = 3

	// Floor guarantees fatigue alone never fully excludes a candidate.
	Floor = 0.2
	Ceil  = 1.0
)

// Scorer computes fatigue scores against one belief snapshot.
type Scorer struct {
	snap *belief.Snapshot
}

func NewScorer(snap *belief.Snapshot) *Scorer {
	return &Scorer{snap: snap}
}

// Score returns the fatigue multiplier for a template in [Floor, Ceil].
// A never-used template scores Ceil exactly, whatever its combo history
// looks like: fatigue only ever penalizes templates that have run.
func (s *Scorer) Score(tmpl *models.Template, now time.Time) float64 {
	if tmpl.IsUnused || tmpl.LastUsedAt == nil {
		return Ceil
	}
	decay := math.Exp(-TemplateLambda * tmpl.LastUsedAgeDays(now))
	return clamp(decay*s.comboModifier(tmpl, now), Floor, Ceil)
}

// comboModifier is exp(-λ_c · comboAge), neutral when the combo has been
// observed fewer than MinComboObservations times.
func (s *Scorer) comboModifier(tmpl *models.Template, now time.Time) float64 {
	if len(tmpl.Elements) == 0 {
		return 1.0
	}
	key := belief.ComboKey(tmpl.Elements)
	if s.snap.ComboCount(key) < MinComboObservations {
		return 1.0
	}
	lastUsed := s.snap.ComboLastUsed(key)
	if lastUsed == nil {
		return 1.0
	}
	ageDays := now.Sub(*lastUsed).Hours() / 24
	return math.Exp(-ComboLambda * ageDays)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
