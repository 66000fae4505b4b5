package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http"
	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/tracing"
)

// serveCmd starts the HTTP API server
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the creative engine HTTP API server.

The server exposes template selection, whitespace scanning, visual
style clustering, experiment lifecycle and winner evolution endpoints.

Required configuration:
  - PostgreSQL database (CREATIVE_POSTGRES_URL)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// runServer initializes and starts the HTTP API server
func runServer(ctx context.Context) error {
	log.Println("Starting creative engine API server...")
	log.Printf("  HTTP: http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Println()

	log.Println("Initializing OpenTelemetry tracing...")
	shutdown, err := tracing.InitTracer("creative-engine")
	if err != nil {
		log.Printf("Warning: Failed to initialize tracing: %v", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
		log.Println("OpenTelemetry tracing initialized")
	}

	log.Println("Connecting to PostgreSQL...")
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	log.Println("Database connection established")

	server := http.NewServer(
		cfg,
		app.pool,
		app.selection,
		app.whitespace,
		app.clusters,
		app.experiments,
		app.evolution,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}
