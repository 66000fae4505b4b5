package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// scanWhitespaceCmd rebuilds whitespace candidates for one brand
func scanWhitespaceCmd() *cobra.Command {
	var brandID string

	cmd := &cobra.Command{
		Use:   "scan-whitespace",
		Short: "Rebuild whitespace candidates for a brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			candidates, err := app.whitespace.Scan(cmd.Context(), brandID)
			if err != nil {
				return err
			}

			log.Printf("Whitespace scan complete: %d candidates", len(candidates))
			for _, c := range candidates {
				fmt.Printf("  #%d %s=%s x %s=%s  potential=%.3f\n",
					c.Rank, c.NameA, c.ValueA, c.NameB, c.ValueB, c.PredictedPotential)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "Brand ID (required)")
	cmd.MarkFlagRequired("brand")
	return cmd
}

// clusterCmd reclusters a brand's ad visuals
func clusterCmd() *cobra.Command {
	var brandID string

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Recluster a brand's ad visuals",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.clusters.Run(cmd.Context(), brandID)
			if err != nil {
				return err
			}

			log.Printf("Clustering complete: generation %d, %d clusters, %d noise ads",
				result.Generation, len(result.Clusters), result.NoiseCount)
			for _, c := range result.Clusters {
				reward := "n/a"
				if c.AvgReward != nil {
					reward = fmt.Sprintf("%.3f", *c.AvgReward)
				}
				fmt.Printf("  cluster %d: %d members, avg reward %s\n", c.Label, c.Size, reward)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "Brand ID (required)")
	cmd.MarkFlagRequired("brand")
	return cmd
}

// analyzeExperimentsCmd runs the daily analysis pass
func analyzeExperimentsCmd() *cobra.Command {
	var brandID string

	cmd := &cobra.Command{
		Use:   "analyze-experiments",
		Short: "Analyze every running experiment of a brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			analyses, err := app.experiments.AnalyzeAll(cmd.Context(), brandID)
			if err != nil {
				return err
			}

			log.Printf("Analyzed %d experiments", len(analyses))
			for _, a := range analyses {
				fmt.Printf("  %s: %s -> %s (best arm %s)\n",
					a.ExperimentID, a.Decision, a.NextStatus, a.BestArmID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "Brand ID (required)")
	cmd.MarkFlagRequired("brand")
	return cmd
}

// evolveCmd plans mutations for a brand's winning ads
func evolveCmd() *cobra.Command {
	var brandID string
	var mode string

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Plan mutations for a brand's winning ads",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			planned, err := app.evolution.EvolveWinners(cmd.Context(), brandID, mode)
			if err != nil {
				return err
			}

			log.Printf("Planned %d mutations", len(planned))
			for _, p := range planned {
				if p.Mutation.Variable != "" {
					fmt.Printf("  %s -> %s: %s on %s (round %d)\n",
						p.Winner.AdID, p.ChildAdID, p.Mutation.Mode, p.Mutation.Variable, p.Mutation.Round)
					continue
				}
				fmt.Printf("  %s -> %s: %s (round %d)\n",
					p.Winner.AdID, p.ChildAdID, p.Mutation.Mode, p.Mutation.Round)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&brandID, "brand", "", "Brand ID (required)")
	cmd.Flags().StringVar(&mode, "mode", models.ModeIterateVariable, "Evolution mode: iterate_variable, visual_refresh or cross_size")
	cmd.MarkFlagRequired("brand")
	return cmd
}
