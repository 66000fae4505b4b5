package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyeMcKenzie81/creative-engine/internal/config"
)

var cfg *config.Config

const version = "0.3.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "creative",
		Short: "Creative optimization engine",
		Long: `Creative runs the ad creative optimization loop: template
selection, fatigue tracking, whitespace scanning, visual style
clustering, experiment analysis and winner evolution.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		scanWhitespaceCmd(),
		clusterCmd(),
		analyzeExperimentsCmd(),
		evolveCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("creative %s\n", version)
		},
	}
}

// configCmd shows current configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Current configuration:")
			fmt.Println()

			fmt.Println("Database:")
			fmt.Printf("  URL:       %s\n", maskURL(cfg.Database.PostgresURL))
			fmt.Printf("  Max Conns: %d\n", cfg.Database.MaxConns)
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  Host: %s\n", cfg.Server.Host)
			fmt.Printf("  Port: %d\n", cfg.Server.Port)
			fmt.Println()

			fmt.Println("Selection:")
			fmt.Printf("  Default Mode:  %s\n", cfg.Selection.DefaultMode)
			fmt.Printf("  Default Count: %d\n", cfg.Selection.DefaultCount)
			fmt.Println()

			fmt.Println("Experiments:")
			fmt.Printf("  Monte Carlo Draws:   %d\n", cfg.Experiment.MonteCarloDraws)
			fmt.Printf("  Min Impressions/Arm: %d\n", cfg.Experiment.MinImpressionsPerArm)
			fmt.Printf("  Running Days:        %d-%d\n", cfg.Experiment.MinRunningDays, cfg.Experiment.MaxRunningDays)
			fmt.Printf("  Winner Threshold:    %.2f\n", cfg.Experiment.WinnerThreshold)
			fmt.Printf("  Min Relative Lift:   %.2f\n", cfg.Experiment.MinRelativeLift)
			fmt.Println()

			fmt.Println("Evolution:")
			fmt.Printf("  Min Reward:        %.2f\n", cfg.Evolution.MinReward)
			fmt.Printf("  Min Impressions:   %d\n", cfg.Evolution.MinImpressions)
			fmt.Printf("  Iterations/Winner: %d\n", cfg.Evolution.MaxIterationsPerWinner)
			fmt.Printf("  Rounds/Root:       %d\n", cfg.Evolution.MaxRoundsPerRoot)
			fmt.Printf("  Max Fan-Out:       %d\n", cfg.Evolution.MaxFanOut)

			return nil
		},
	}
}

// maskURL hides credentials embedded in a connection URL.
func maskURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	return "(set)"
}
