package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/handlers"
	"github.com/RyeMcKenzie81/creative-engine/internal/adapters/http/middleware"
	"github.com/RyeMcKenzie81/creative-engine/internal/application/services"
	"github.com/RyeMcKenzie81/creative-engine/internal/config"
)

type Server struct {
	config      *config.Config
	router      *chi.Mux
	httpServer  *http.Server
	db          *pgxpool.Pool
	selection   *services.SelectionService
	whitespace  *services.WhitespaceService
	clusters    *services.ClusterService
	experiments *services.ExperimentService
	evolution   *services.EvolutionService
}

func NewServer(
	cfg *config.Config,
	db *pgxpool.Pool,
	selection *services.SelectionService,
	whitespace *services.WhitespaceService,
	clusters *services.ClusterService,
	experiments *services.ExperimentService,
	evolution *services.EvolutionService,
) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		selection:   selection,
		whitespace:  whitespace,
		clusters:    clusters,
		experiments: experiments,
		evolution:   evolution,
	}

	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(s.config.Server.CORSOrigins))
	r.Use(middleware.Metrics)

	healthHandler := handlers.NewHealthHandler(s.db)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		selectionHandler := handlers.NewSelectionHandler(
			s.selection,
			s.config.Selection.DefaultMode,
			s.config.Selection.DefaultCount,
		)
		r.Post("/selection", selectionHandler.Select)
		r.Post("/fatigue-score", selectionHandler.FatigueScore)

		whitespaceHandler := handlers.NewWhitespaceHandler(s.whitespace)
		r.Post("/whitespace/scan", whitespaceHandler.Scan)
		r.Get("/whitespace", whitespaceHandler.List)

		clustersHandler := handlers.NewClustersHandler(s.clusters)
		r.Post("/embeddings", clustersHandler.SaveEmbedding)
		r.Post("/clusters/rebuild", clustersHandler.Rebuild)
		r.Get("/clusters", clustersHandler.List)
		r.Post("/clusters/diversity-check", clustersHandler.DiversityCheck)

		experimentsHandler := handlers.NewExperimentsHandler(s.experiments)
		r.Post("/experiments", experimentsHandler.Create)
		r.Get("/experiments/{id}", experimentsHandler.Get)
		r.Post("/experiments/{id}/start", experimentsHandler.Start)
		r.Put("/experiments/{id}/arms", experimentsHandler.RecordStats)
		r.Post("/experiments/{id}/analyze", experimentsHandler.Analyze)

		evolutionHandler := handlers.NewEvolutionHandler(s.evolution)
		r.Post("/evolution/select-mutation", evolutionHandler.SelectMutation)
		r.Post("/evolution/evolve", evolutionHandler.Evolve)
		r.Post("/evolution/fan-out", evolutionHandler.FanOut)
		r.Get("/lineage/{adID}", evolutionHandler.Lineage)
	})

	s.router = r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
