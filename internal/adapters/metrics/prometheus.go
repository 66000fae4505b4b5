package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creative_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "creative_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creative_selections_total",
		Help: "Template selections served, by mode and fallback rung",
	}, []string{"mode", "fallback"})

	SelectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creative_selection_duration_seconds",
		Help:    "Template selection duration",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	WhitespaceScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creative_whitespace_scans_total",
		Help: "Whitespace scan runs completed",
	})

	WhitespaceCandidatesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creative_whitespace_candidates_found",
		Help:    "Candidates surfaced per whitespace scan",
		Buckets: []float64{0, 1, 5, 10, 20},
	})

	ClusterRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creative_cluster_runs_total",
		Help: "Visual style clustering runs completed",
	})

	ClusterRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "creative_cluster_run_duration_seconds",
		Help:    "Clustering run duration",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30},
	})

	ExperimentAnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creative_experiment_analyses_total",
		Help: "Experiment analyses by resulting decision",
	}, []string{"decision"})

	EvolutionMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creative_evolution_mutations_total",
		Help: "Planned winner mutations by mode",
	}, []string{"mode"})

	EvolutionCapRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creative_evolution_cap_rejections_total",
		Help: "Mutation requests refused because an iteration or round cap was hit",
	})
)
