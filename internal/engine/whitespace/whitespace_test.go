package whitespace

import (
	"fmt"
	"testing"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(name, value string, alpha, beta float64) *models.ElementScore {
	return &models.ElementScore{Name: name, Value: value, Alpha: alpha, Beta: beta, Observations: int(alpha + beta - 2)}
}

func TestPredictedPotentialWorkedExample(t *testing.T) {
	// Means 0.6 and 0.7, synergy 0.1, never used together:
	// base 0.65 + synergy 0.1 + novelty 0.15 = 0.90.
	snap := belief.NewSnapshot(
		[]*models.ElementScore{
			score("hook_type", "curiosity", 6, 4),
			score("color_mode", "warm", 7, 3),
		},
		[]*models.ElementInteraction{
			{NameA: "hook_type", ValueA: "curiosity", NameB: "color_mode", ValueB: "warm", Effect: 0.1, Direction: models.InteractionSynergy},
		},
		nil,
	)

	got := NewIdentifier(snap).Identify("brand_1")
	require.Len(t, got, 1)
	c := got[0]
	assert.InDelta(t, 0.65, c.BaseScore, 1e-9)
	assert.InDelta(t, 0.1, c.SynergyBonus, 1e-9)
	assert.InDelta(t, 0.15, c.NoveltyBonus, 1e-9)
	assert.InDelta(t, 0.90, c.PredictedPotential, 1e-9)
	assert.Equal(t, 1, c.Rank)
	assert.Equal(t, "brand_1", c.BrandID)
}

func TestWeakMeansFilteredOut(t *testing.T) {
	snap := belief.NewSnapshot([]*models.ElementScore{
		score("hook_type", "curiosity", 6, 4),
		score("color_mode", "cool", 4, 6), // mean 0.4
	}, nil, nil)

	assert.Empty(t, NewIdentifier(snap).Identify("brand_1"))
}

func TestOverusedPairsFilteredOut(t *testing.T) {
	snap := belief.NewSnapshot(
		[]*models.ElementScore{
			score("hook_type", "curiosity", 6, 4),
			score("color_mode", "warm", 7, 3),
		},
		nil,
		[]*models.ComboUsage{
			{ComboKey: "color_mode=warm|hook_type=curiosity", Count: 5},
		},
	)

	assert.Empty(t, NewIdentifier(snap).Identify("brand_1"))
}

func TestConflictPairsExcluded(t *testing.T) {
	snap := belief.NewSnapshot(
		[]*models.ElementScore{
			score("hook_type", "curiosity", 6, 4),
			score("color_mode", "warm", 7, 3),
		},
		[]*models.ElementInteraction{
			{NameA: "hook_type", ValueA: "curiosity", NameB: "color_mode", ValueB: "warm", Effect: -0.2, Direction: models.InteractionConflict},
		},
		nil,
	)

	assert.Empty(t, NewIdentifier(snap).Identify("brand_1"))
}

func TestSameDimensionPairsSkipped(t *testing.T) {
	snap := belief.NewSnapshot([]*models.ElementScore{
		score("hook_type", "curiosity", 6, 4),
		score("hook_type", "urgency", 7, 3),
	}, nil, nil)

	assert.Empty(t, NewIdentifier(snap).Identify("brand_1"))
}

func TestNoveltyDecaysWithUsage(t *testing.T) {
	snap := belief.NewSnapshot(
		[]*models.ElementScore{
			score("hook_type", "curiosity", 6, 4),
			score("color_mode", "warm", 7, 3),
		},
		nil,
		[]*models.ComboUsage{
			{ComboKey: "color_mode=warm|hook_type=curiosity", Count: 3},
		},
	)

	got := NewIdentifier(snap).Identify("brand_1")
	require.Len(t, got, 1)
	// 0.15 * exp(-1) ~ 0.0552
	assert.InDelta(t, 0.0552, got[0].NoveltyBonus, 1e-3)
	assert.Equal(t, 3, got[0].UsageCount)
}

func TestTopTwentyWithDenseRanks(t *testing.T) {
	// 30 strong values in one dimension against one anchor in another
	// produce 30 qualifying pairs; only 20 survive, ranked densely.
	scores := []*models.ElementScore{score("color_mode", "warm", 9, 1)}
	for i := 0; i < 30; i++ {
		// Two values per mean level so ties exist.
		alpha := 6 + float64(i/2)
		scores = append(scores, score("hook_type", fmt.Sprintf("hook_%02d", i), alpha, 4))
	}
	snap := belief.NewSnapshot(scores, nil, nil)

	got := NewIdentifier(snap).Identify("brand_1")
	require.Len(t, got, MaxCandidates)

	assert.Equal(t, 1, got[0].Rank)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].PredictedPotential, got[i].PredictedPotential)
		if got[i].PredictedPotential == got[i-1].PredictedPotential {
			assert.Equal(t, got[i-1].Rank, got[i].Rank)
		} else {
			assert.Equal(t, got[i-1].Rank+1, got[i].Rank)
		}
	}
}

func TestPairKeyCanonicalOrder(t *testing.T) {
	snap := belief.NewSnapshot(
		[]*models.ElementScore{
			score("template_category", "hero", 7, 3),
			score("color_mode", "warm", 7, 3),
		},
		nil, nil,
	)

	got := NewIdentifier(snap).Identify("brand_1")
	require.Len(t, got, 1)
	assert.Equal(t, "color_mode", got[0].NameA)
	assert.Equal(t, "template_category", got[0].NameB)
}
