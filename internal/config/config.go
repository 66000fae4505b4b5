package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the creative engine
type Config struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Selection  SelectionConfig  `json:"selection"`
	Fatigue    FatigueConfig    `json:"fatigue"`
	Experiment ExperimentConfig `json:"experiment"`
	Evolution  EvolutionConfig  `json:"evolution"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	PostgresURL string `json:"postgres_url"`
	MaxConns    int    `json:"max_conns"`
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
}

// SelectionConfig holds selection pipeline defaults
type SelectionConfig struct {
	DefaultMode  string `json:"default_mode"`  // roll_the_dice or smart_select
	DefaultCount int    `json:"default_count"` // templates per selection request
}

// FatigueConfig holds decay parameters. The lambda values are fixed in
// the scoring package; only the scan cadence is tunable here.
type FatigueConfig struct {
	ComboScanIntervalHours int `json:"combo_scan_interval_hours"`
}

// ExperimentConfig holds analysis defaults applied to new experiments
type ExperimentConfig struct {
	MonteCarloDraws      int     `json:"monte_carlo_draws"`
	MinImpressionsPerArm int64   `json:"min_impressions_per_arm"`
	MinRunningDays       int     `json:"min_running_days"`
	MaxRunningDays       int     `json:"max_running_days"`
	BaselineRate         float64 `json:"baseline_rate"`
	WinnerThreshold      float64 `json:"winner_threshold"`
	MinRelativeLift      float64 `json:"min_relative_lift"`
}

// EvolutionConfig holds winner-evolution thresholds and caps
type EvolutionConfig struct {
	MinReward              float64 `json:"min_reward"`
	MinImpressions         int64   `json:"min_impressions"`
	MaxIterationsPerWinner int     `json:"max_iterations_per_winner"`
	MaxRoundsPerRoot       int     `json:"max_rounds_per_root"`
	MaxFanOut              int     `json:"max_fan_out"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			PostgresURL: "",
			MaxConns:    10,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Selection: SelectionConfig{
			DefaultMode:  "smart_select",
			DefaultCount: 5,
		},
		Fatigue: FatigueConfig{
			ComboScanIntervalHours: 24,
		},
		Experiment: ExperimentConfig{
			MonteCarloDraws:      10000,
			MinImpressionsPerArm: 1000,
			MinRunningDays:       3,
			MaxRunningDays:       30,
			BaselineRate:         0.02,
			WinnerThreshold:      0.95,
			MinRelativeLift:      0.05,
		},
		Evolution: EvolutionConfig{
			MinReward:              0.6,
			MinImpressions:         1000,
			MaxIterationsPerWinner: 5,
			MaxRoundsPerRoot:       10,
			MaxFanOut:              50,
		},
	}
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envInt64 loads an int64 environment variable into the target pointer if set and valid
func envInt64(key string, target *int64) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = i
		}
	}
}

// envFloat loads a float64 environment variable into the target pointer if set and valid
func envFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

// envStringSlice loads a comma-separated environment variable into a string slice
func envStringSlice(key string, target *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			*target = result
		}
	}
}

// getConfigPath resolves the optional JSON config file location.
func getConfigPath() string {
	if path := os.Getenv("CREATIVE_CONFIG"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".creative", "config.json")
}

// Load builds configuration from defaults, an optional JSON config file
// and environment variable overlays, in that order.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if configPath := getConfigPath(); configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to parse config file %s: %v\n", configPath, err)
			}
		}
	}

	envString("CREATIVE_POSTGRES_URL", &cfg.Database.PostgresURL)
	envInt("CREATIVE_DB_MAX_CONNS", &cfg.Database.MaxConns)

	envString("CREATIVE_SERVER_HOST", &cfg.Server.Host)
	envInt("CREATIVE_SERVER_PORT", &cfg.Server.Port)
	envStringSlice("CREATIVE_CORS_ORIGINS", &cfg.Server.CORSOrigins)

	envString("CREATIVE_SELECTION_MODE", &cfg.Selection.DefaultMode)
	envInt("CREATIVE_SELECTION_COUNT", &cfg.Selection.DefaultCount)

	envInt("CREATIVE_COMBO_SCAN_INTERVAL_HOURS", &cfg.Fatigue.ComboScanIntervalHours)

	envInt("CREATIVE_MC_DRAWS", &cfg.Experiment.MonteCarloDraws)
	envInt64("CREATIVE_MIN_IMPRESSIONS_PER_ARM", &cfg.Experiment.MinImpressionsPerArm)
	envInt("CREATIVE_MIN_RUNNING_DAYS", &cfg.Experiment.MinRunningDays)
	envInt("CREATIVE_MAX_RUNNING_DAYS", &cfg.Experiment.MaxRunningDays)
	envFloat("CREATIVE_BASELINE_RATE", &cfg.Experiment.BaselineRate)
	envFloat("CREATIVE_WINNER_THRESHOLD", &cfg.Experiment.WinnerThreshold)
	envFloat("CREATIVE_MIN_RELATIVE_LIFT", &cfg.Experiment.MinRelativeLift)

	envFloat("CREATIVE_EVOLUTION_MIN_REWARD", &cfg.Evolution.MinReward)
	envInt64("CREATIVE_EVOLUTION_MIN_IMPRESSIONS", &cfg.Evolution.MinImpressions)
	envInt("CREATIVE_MAX_ITERATIONS_PER_WINNER", &cfg.Evolution.MaxIterationsPerWinner)
	envInt("CREATIVE_MAX_ROUNDS_PER_ROOT", &cfg.Evolution.MaxRoundsPerRoot)
	envInt("CREATIVE_MAX_FAN_OUT", &cfg.Evolution.MaxFanOut)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}
	if c.Selection.DefaultMode != "roll_the_dice" && c.Selection.DefaultMode != "smart_select" {
		errs = append(errs, fmt.Sprintf("unknown selection mode %q", c.Selection.DefaultMode))
	}
	if c.Selection.DefaultCount < 1 {
		errs = append(errs, "selection count must be at least 1")
	}
	if c.Experiment.MonteCarloDraws < 100 {
		errs = append(errs, "monte carlo draws must be at least 100")
	}
	if c.Experiment.WinnerThreshold <= 0.5 || c.Experiment.WinnerThreshold >= 1 {
		errs = append(errs, "winner threshold must be in (0.5, 1)")
	}
	if c.Experiment.BaselineRate < 0 || c.Experiment.BaselineRate >= 1 {
		errs = append(errs, "baseline rate must be in [0, 1)")
	}
	if c.Experiment.MinRunningDays > c.Experiment.MaxRunningDays {
		errs = append(errs, "min running days exceeds max running days")
	}
	if c.Evolution.MaxIterationsPerWinner < 1 || c.Evolution.MaxRoundsPerRoot < 1 {
		errs = append(errs, "evolution caps must be at least 1")
	}
	if c.Evolution.MaxFanOut < 1 {
		errs = append(errs, "max fan-out must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
