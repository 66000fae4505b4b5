package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/id"
	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/postgres"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/evolution"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/experiment"
)

// app bundles the wired services every command variant shares.
type app struct {
	pool        *pgxpool.Pool
	selection   *services.SelectionService
	whitespace  *services.WhitespaceService
	clusters    *services.ClusterService
	experiments *services.ExperimentService
	evolution   *services.EvolutionService
}

func buildApp(ctx context.Context) (*app, error) {
	if cfg.Database.PostgresURL == "" {
		return nil, fmt.Errorf("PostgreSQL is required. Set CREATIVE_POSTGRES_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	beliefRepo := postgres.NewBeliefRepository(pool)
	templateRepo := postgres.NewTemplateRepository(pool)
	whitespaceRepo := postgres.NewWhitespaceRepository(pool)
	visualRepo := postgres.NewVisualRepository(pool)
	experimentRepo := postgres.NewExperimentRepository(pool)
	lineageRepo := postgres.NewLineageRepository(pool)

	idGen := id.New()
	txManager := postgres.NewTransactionManager(pool)
	// One generator is shared by every service, so it must tolerate
	// concurrent HTTP handlers.
	rng := services.NewLockedRand(time.Now().UnixNano())

	experimentEngine, err := experiment.NewEngine(rng, cfg.Experiment.MonteCarloDraws)
	if err != nil {
		pool.Close()
		return nil, err
	}

	criteria := evolution.Criteria{
		MinReward:      cfg.Evolution.MinReward,
		MinImpressions: cfg.Evolution.MinImpressions,
	}
	caps := evolution.Caps{
		MaxIterationsPerWinner: cfg.Evolution.MaxIterationsPerWinner,
		MaxRoundsPerRoot:       cfg.Evolution.MaxRoundsPerRoot,
	}
	evolutionEngine, err := evolution.NewEngine(criteria, caps, rng)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		pool:        pool,
		selection:   services.NewSelectionService(templateRepo, beliefRepo, txManager, rng),
		whitespace:  services.NewWhitespaceService(beliefRepo, whitespaceRepo, txManager, idGen),
		clusters:    services.NewClusterService(visualRepo, txManager, idGen),
		experiments: services.NewExperimentService(experimentRepo, experimentEngine, idGen),
		evolution:   services.NewEvolutionService(lineageRepo, beliefRepo, evolutionEngine, criteria, idGen),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}
