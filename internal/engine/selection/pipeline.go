package selection

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
)

// Mode names the two selection presets exposed to callers.
type Mode string

const (
	ModeRollTheDice Mode = "roll_the_dice"
	ModeSmartSelect Mode = "smart_select"
)

// WeightsForMode resolves a preset by name.
func WeightsForMode(mode Mode) (Weights, error) {
	switch mode {
	case ModeRollTheDice:
		return RollTheDice(), nil
	case ModeSmartSelect:
		return SmartSelect(), nil
	default:
		return nil, fmt.Errorf("%w: selection mode %q", domain.ErrInvalidInput, mode)
	}
}

// Scored pairs a candidate with its aggregate weighted score, kept for
// observability in responses and logs.
type Scored struct {
	Template *models.Template
	Score    float64
}

// Result reports the picked templates and which rung of the fallback
// ladder produced them.
type Result struct {
	Picked   []Scored
	Fallback Fallback
}

// Fallback identifies which scoring rung produced the result.
type Fallback string

const (
	FallbackNone    Fallback = "none"
	FallbackReduced Fallback = "reduced_scorers"
	FallbackUniform Fallback = "uniform_random"
)

// Pipeline aggregates scorer outputs into per-candidate weights and
// samples without replacement. Construction fails fast on weight/scorer
// mismatches so configuration errors surface before any scoring runs.
type Pipeline struct {
	scorers []Scorer
	reduced []Scorer
	weights Weights
	rng     *rand.Rand
}

// NewPipeline wires the primary scorer set, its reduced fallback set and
// a weight table. Every weight key must name a known scorer; a scorer
// without a weight contributes nothing.
func NewPipeline(scorers, reduced []Scorer, weights Weights, rng *rand.Rand) (*Pipeline, error) {
	if len(scorers) == 0 {
		return nil, domain.ErrNoScorers
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	known := make(map[string]bool, len(scorers))
	for _, s := range scorers {
		known[s.Name] = true
	}
	for name := range weights {
		if !known[name] {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScorer, name)
		}
	}
	return &Pipeline{scorers: scorers, reduced: reduced, weights: weights, rng: rng}, nil
}

// NewDefaultPipeline builds a Pipeline with the builtin scorer sets bound
// to one belief snapshot and the weights of the given preset.
func NewDefaultPipeline(snap *belief.Snapshot, mode Mode, rng *rand.Rand) (*Pipeline, error) {
	weights, err := WeightsForMode(mode)
	if err != nil {
		return nil, err
	}
	return NewPipeline(BuiltinScorers(snap), ReducedScorers(snap), weights, rng)
}

// Select picks up to count templates by weighted random sampling without
// replacement. Selection never fails for a non-empty candidate list:
// when the primary scorers leave every candidate at zero weight it
// retries with the reduced set, and finally falls back to uniform
// random. Fewer candidates than count returns them all.
func (p *Pipeline) Select(candidates []*models.Template, ctx *models.SelectionContext, count int) (*Result, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", domain.ErrInvalidInput, count)
	}

	if picked, ok := p.sample(candidates, ctx, count, p.scorers); ok {
		return &Result{Picked: picked, Fallback: FallbackNone}, nil
	}
	if len(p.reduced) > 0 {
		if picked, ok := p.sample(candidates, ctx, count, p.reduced); ok {
			return &Result{Picked: picked, Fallback: FallbackReduced}, nil
		}
	}
	return &Result{Picked: p.uniform(candidates, count), Fallback: FallbackUniform}, nil
}

// sample scores every candidate with the given scorer set and draws
// count winners proportionally to their scores. Zero-weight candidates
// only fill seats the positive pool cannot, drawn uniformly. ok is
// false when no candidate ends up with positive weight.
func (p *Pipeline) sample(candidates []*models.Template, ctx *models.SelectionContext, count int, scorers []Scorer) ([]Scored, bool) {
	pool := make([]Scored, 0, len(candidates))
	var zeros []*models.Template
	for _, tmpl := range candidates {
		score := p.aggregate(tmpl, ctx, scorers)
		if score > 0 {
			pool = append(pool, Scored{Template: tmpl, Score: score})
		} else {
			zeros = append(zeros, tmpl)
		}
	}
	if len(pool) == 0 {
		return nil, false
	}

	if count > len(candidates) {
		count = len(candidates)
	}
	picked := make([]Scored, 0, count)
	for len(picked) < count && len(pool) > 0 {
		i := p.drawIndex(pool)
		picked = append(picked, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	for _, i := range p.rng.Perm(len(zeros)) {
		if len(picked) == count {
			break
		}
		picked = append(picked, Scored{Template: zeros[i], Score: 0})
	}
	return picked, true
}

// aggregate sums weight-scaled scorer outputs for one candidate.
func (p *Pipeline) aggregate(tmpl *models.Template, ctx *models.SelectionContext, scorers []Scorer) float64 {
	var total float64
	for _, s := range scorers {
		w := p.weights[s.Name]
		if w == 0 {
			continue
		}
		total += w * s.Score(tmpl, ctx)
	}
	return total
}

// drawIndex performs one weighted draw over the remaining pool.
func (p *Pipeline) drawIndex(pool []Scored) int {
	var total float64
	for _, c := range pool {
		total += c.Score
	}
	target := p.rng.Float64() * total
	for i, c := range pool {
		target -= c.Score
		if target <= 0 {
			return i
		}
	}
	return len(pool) - 1
}

// uniform is the last rung of the fallback ladder: a plain shuffle.
func (p *Pipeline) uniform(candidates []*models.Template, count int) []Scored {
	if count > len(candidates) {
		count = len(candidates)
	}
	idx := p.rng.Perm(len(candidates))
	picked := make([]Scored, 0, count)
	for _, i := range idx[:count] {
		picked = append(picked, Scored{Template: candidates[i], Score: 0})
	}
	return picked
}
