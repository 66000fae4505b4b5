// Package whitespace surfaces untested element-value pairs that the
// belief state predicts would perform well.
package whitespace

import (
	"math"
	"sort"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
)

const (
	// MinMean is the posterior-mean floor both halves of a pair must clear.
	MinMean = 0.5
	// MaxUsage excludes pairs already tried this many times or more.
	MaxUsage = 5
	// MaxCandidates caps the ranked output.
	MaxCandidates = 20

	noveltyWeight = 0.15
	noveltyScale  = 3.0
)

// Identifier scans a belief snapshot for promising untested pairs.
type Identifier struct {
	snap *belief.Snapshot
}

func NewIdentifier(snap *belief.Snapshot) *Identifier {
	return &Identifier{snap: snap}
}

// Identify enumerates every cross-dimension pair of known element values,
// filters to under-used pairs with strong individual posteriors, scores
// them and returns the top candidates with dense 1-based ranks. Pairs
// with a recorded conflict are excluded outright.
func (id *Identifier) Identify(brandID string) []*models.WhitespaceCandidate {
	elems := id.snap.Elements()

	var out []*models.WhitespaceCandidate
	for i := 0; i < len(elems); i++ {
		for j := i + 1; j < len(elems); j++ {
			a, b := elems[i], elems[j]
			if a.Name == b.Name {
				continue
			}
			if c := id.score(brandID, a, b); c != nil {
				out = append(out, c)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedPotential > out[j].PredictedPotential
	})
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	assignDenseRanks(out)
	return out
}

// score evaluates one pair, returning nil when it fails the filters.
func (id *Identifier) score(brandID string, a, b belief.ElementBelief) *models.WhitespaceCandidate {
	meanA, meanB := a.Posterior.Mean(), b.Posterior.Mean()
	if meanA <= MinMean || meanB <= MinMean {
		return nil
	}

	usage := id.snap.ComboCount(belief.ComboKey(map[string]string{
		a.Name: a.Value,
		b.Name: b.Value,
	}))
	if usage >= MaxUsage {
		return nil
	}

	var synergy float64
	if in := id.snap.Interaction(a.Name, a.Value, b.Name, b.Value); in != nil {
		if in.Direction == models.InteractionConflict {
			return nil
		}
		if in.Direction == models.InteractionSynergy {
			synergy = math.Max(0, in.Effect)
		}
	}

	base := (meanA + meanB) / 2
	novelty := noveltyWeight * math.Exp(-float64(usage)/noveltyScale)

	c := &models.WhitespaceCandidate{
		BrandID:            brandID,
		NameA:              a.Name,
		ValueA:             a.Value,
		NameB:              b.Name,
		ValueB:             b.Value,
		BaseScore:          base,
		SynergyBonus:       synergy,
		NoveltyBonus:       novelty,
		PredictedPotential: base + synergy + novelty,
		UsageCount:         usage,
	}
	c.NameA, c.ValueA, c.NameB, c.ValueB = c.PairKey()
	return c
}

// assignDenseRanks gives equal potentials equal rank and increments by
// one per distinct value, so ranks run 1, 1, 2 rather than 1, 1, 3.
func assignDenseRanks(candidates []*models.WhitespaceCandidate) {
	rank := 0
	prev := math.Inf(1)
	for _, c := range candidates {
		if c.PredictedPotential < prev {
			rank++
			prev = c.PredictedPotential
		}
		c.Rank = rank
	}
}
