package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("CREATIVE_SERVER_PORT", "9090")
	t.Setenv("CREATIVE_SELECTION_MODE", "roll_the_dice")
	t.Setenv("CREATIVE_WINNER_THRESHOLD", "0.9")
	t.Setenv("CREATIVE_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CREATIVE_MIN_IMPRESSIONS_PER_ARM", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "roll_the_dice", cfg.Selection.DefaultMode)
	assert.Equal(t, 0.9, cfg.Experiment.WinnerThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(500), cfg.Experiment.MinImpressionsPerArm)
}

func TestInvalidValuesRejected(t *testing.T) {
	cases := map[string]func(*Config){
		"bad port":          func(c *Config) { c.Server.Port = 0 },
		"bad mode":          func(c *Config) { c.Selection.DefaultMode = "chaotic" },
		"low draws":         func(c *Config) { c.Experiment.MonteCarloDraws = 10 },
		"bad threshold":     func(c *Config) { c.Experiment.WinnerThreshold = 1.5 },
		"inverted days":     func(c *Config) { c.Experiment.MinRunningDays = 40 },
		"zero caps":         func(c *Config) { c.Evolution.MaxIterationsPerWinner = 0 },
		"zero fan-out":      func(c *Config) { c.Evolution.MaxFanOut = 0 },
		"negative baseline": func(c *Config) { c.Experiment.BaselineRate = -0.1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
