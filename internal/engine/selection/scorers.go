// Package selection composes independent template scorers into one
// weighted random selection over candidates.
package selection

import (
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/fatigue"
)

// Scorer names.
const (
	ScorerAssetMatch    = "asset_match"
	ScorerCategoryMatch = "category_match"
	ScorerAwareness     = "awareness_alignment"
	ScorerAudienceMatch = "audience_match"
	ScorerBeliefClarity = "belief_clarity"
	ScorerFatigue       = "fatigue"
)

// Scorer is a named pure function producing a score in [0,1]. Scorers
// whose required signal is absent degrade to a neutral value instead of
// failing: 1.0 when the context imposes no constraint, 0.5 when the
// template carries no usable data.
type Scorer struct {
	Name  string
	Score func(tmpl *models.Template, ctx *models.SelectionContext) float64
}

// Weights maps scorer names to their contribution. The two presets below
// are explicit constructed values; there is no global registry.
type Weights map[string]float64

// RollTheDice biases toward exploration and diversity.
func RollTheDice() Weights {
	return Weights{
		ScorerAssetMatch:    0.15,
		ScorerCategoryMatch: 0.15,
		ScorerAwareness:     0.15,
		ScorerAudienceMatch: 0.15,
		ScorerBeliefClarity: 0.20,
		ScorerFatigue:       0.20,
	}
}

// SmartSelect biases toward best fit, weighting fatigue heavily so
// recently used templates fall behind.
func SmartSelect() Weights {
	return Weights{
		ScorerAssetMatch:    0.15,
		ScorerCategoryMatch: 0.15,
		ScorerAwareness:     0.10,
		ScorerAudienceMatch: 0.10,
		ScorerBeliefClarity: 0.10,
		ScorerFatigue:       0.40,
	}
}

// awarenessOrder positions stages on the classic awareness ladder so the
// alignment scorer can reward near misses.
var awarenessOrder = map[string]int{
	"unaware":        0,
	"problem_aware":  1,
	"solution_aware": 2,
	"product_aware":  3,
	"most_aware":     4,
}

// BuiltinScorers returns the full scorer set bound to one belief
// snapshot. The snapshot supplies combo usage for the fatigue scorer and
// posteriors for belief clarity.
func BuiltinScorers(snap *belief.Snapshot) []Scorer {
	fat := fatigue.NewScorer(snap)

	return []Scorer{
		{Name: ScorerAssetMatch, Score: scoreAssetMatch},
		{Name: ScorerCategoryMatch, Score: scoreCategoryMatch},
		{Name: ScorerAwareness, Score: scoreAwareness},
		{Name: ScorerAudienceMatch, Score: scoreAudienceMatch},
		{Name: ScorerBeliefClarity, Score: func(tmpl *models.Template, _ *models.SelectionContext) float64 {
			return scoreBeliefClarity(snap, tmpl)
		}},
		{Name: ScorerFatigue, Score: func(tmpl *models.Template, ctx *models.SelectionContext) float64 {
			now := ctx.Now
			if now.IsZero() {
				now = time.Now()
			}
			return fat.Score(tmpl, now)
		}},
	}
}

// ReducedScorers is the fallback scorer set used when the primary set
// leaves no eligible candidate: only category fit and fatigue remain.
func ReducedScorers(snap *belief.Snapshot) []Scorer {
	all := BuiltinScorers(snap)
	reduced := make([]Scorer, 0, 2)
	for _, s := range all {
		if s.Name == ScorerCategoryMatch || s.Name == ScorerFatigue {
			reduced = append(reduced, s)
		}
	}
	return reduced
}

func scoreAssetMatch(tmpl *models.Template, ctx *models.SelectionContext) float64 {
	if len(ctx.AssetTypes) == 0 {
		return 1.0
	}
	if len(tmpl.AssetTypes) == 0 {
		return 0.5
	}
	supported := make(map[string]bool, len(tmpl.AssetTypes))
	for _, a := range tmpl.AssetTypes {
		supported[a] = true
	}
	matched := 0
	for _, want := range ctx.AssetTypes {
		if supported[want] {
			matched++
		}
	}
	return float64(matched) / float64(len(ctx.AssetTypes))
}

func scoreCategoryMatch(tmpl *models.Template, ctx *models.SelectionContext) float64 {
	if ctx.Category == "" {
		return 1.0
	}
	if tmpl.Category == "" {
		return 0.5
	}
	if tmpl.Category == ctx.Category {
		return 1.0
	}
	return 0.1
}

func scoreAwareness(tmpl *models.Template, ctx *models.SelectionContext) float64 {
	if ctx.AwarenessStage == "" {
		return 1.0
	}
	if tmpl.AwarenessStage == "" {
		return 0.5
	}
	want, okWant := awarenessOrder[ctx.AwarenessStage]
	have, okHave := awarenessOrder[tmpl.AwarenessStage]
	if !okWant || !okHave {
		return 0.5
	}
	switch diff := abs(want - have); diff {
	case 0:
		return 1.0
	case 1:
		return 0.6
	default:
		return 0.2
	}
}

func scoreAudienceMatch(tmpl *models.Template, ctx *models.SelectionContext) float64 {
	if ctx.Audience == "" {
		return 1.0
	}
	if len(tmpl.Audiences) == 0 {
		return 0.5
	}
	for _, a := range tmpl.Audiences {
		if a == ctx.Audience {
			return 1.0
		}
	}
	return 0.2
}

// scoreBeliefClarity rewards templates whose elements have accumulated
// observations: n/(n+10) averaged over the template's elements. A
// template without element data is neutral.
func scoreBeliefClarity(snap *belief.Snapshot, tmpl *models.Template) float64 {
	if len(tmpl.Elements) == 0 {
		return 0.5
	}
	var total float64
	for name, value := range tmpl.Elements {
		p, _ := snap.Posterior(name, value)
		n := float64(p.Observations)
		total += n / (n + 10)
	}
	return total / float64(len(tmpl.Elements))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
