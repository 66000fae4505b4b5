package belief

import (
	"testing"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComboKey(t *testing.T) {
	key := ComboKey(map[string]string{
		"hook_type":         "curiosity",
		"color_mode":        "warm",
		"template_category": "hero",
	})
	assert.Equal(t, "color_mode=warm|hook_type=curiosity|template_category=hero", key)
}

func TestComboKeyEmpty(t *testing.T) {
	assert.Equal(t, "", ComboKey(nil))
	assert.Equal(t, "", ComboKey(map[string]string{}))
}

func TestPosteriorMeanVariance(t *testing.T) {
	p := Posterior{Alpha: 3, Beta: 1}
	assert.InDelta(t, 0.75, p.Mean(), 1e-9)
	// Var(Beta(3,1)) = 3/(16*5)
	assert.InDelta(t, 3.0/80.0, p.Variance(), 1e-9)
}

func TestPosteriorUpdate(t *testing.T) {
	p := UniformPrior().Update(4, 6)
	assert.Equal(t, 5.0, p.Alpha)
	assert.Equal(t, 7.0, p.Beta)
	assert.Equal(t, 10, p.Observations)
}

func TestSnapshotLookups(t *testing.T) {
	snap := NewSnapshot(
		[]*models.ElementScore{
			{Name: "hook_type", Value: "curiosity", Alpha: 8, Beta: 2, Observations: 8},
		},
		[]*models.ElementInteraction{
			{NameA: "hook_type", ValueA: "curiosity", NameB: "color_mode", ValueB: "warm", Effect: 0.1, Direction: models.InteractionSynergy},
		},
		[]*models.ComboUsage{
			{ComboKey: "color_mode=warm|hook_type=curiosity", Count: 4},
		},
	)

	p, ok := snap.Posterior("hook_type", "curiosity")
	require.True(t, ok)
	assert.InDelta(t, 0.8, p.Mean(), 1e-9)

	// Unknown elements fall back to the uniform prior.
	p, ok = snap.Posterior("hook_type", "urgency")
	assert.False(t, ok)
	assert.InDelta(t, 0.5, p.Mean(), 1e-9)

	// Interaction lookup is order-insensitive.
	in := snap.Interaction("color_mode", "warm", "hook_type", "curiosity")
	require.NotNil(t, in)
	assert.Equal(t, models.InteractionSynergy, in.Direction)

	assert.Equal(t, 4, snap.ComboCount("color_mode=warm|hook_type=curiosity"))
	assert.Equal(t, 0, snap.ComboCount("missing"))
}

func TestSnapshotElementsDeterministicOrder(t *testing.T) {
	snap := NewSnapshot([]*models.ElementScore{
		{Name: "hook_type", Value: "urgency", Alpha: 1, Beta: 1},
		{Name: "color_mode", Value: "warm", Alpha: 1, Beta: 1},
		{Name: "hook_type", Value: "curiosity", Alpha: 1, Beta: 1},
	}, nil, nil)

	elems := snap.Elements()
	require.Len(t, elems, 3)
	assert.Equal(t, "color_mode", elems[0].Name)
	assert.Equal(t, "curiosity", elems[1].Value)
	assert.Equal(t, "urgency", elems[2].Value)
}
