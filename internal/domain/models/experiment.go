package models

import "time"

// Experiment statuses. Transitions are one-directional:
// draft -> running -> analyzing -> {concluded, stopped_futile, inconclusive}.
// Terminal statuses are final.
const (
	StatusDraft         = "draft"
	StatusRunning       = "running"
	StatusAnalyzing     = "analyzing"
	StatusConcluded     = "concluded"
	StatusStoppedFutile = "stopped_futile"
	StatusInconclusive  = "inconclusive"
)

// Metric kinds and optimization directions.
const (
	MetricBinary     = "binary"     // e.g. CTR: conversions over impressions
	MetricContinuous = "continuous" // e.g. CPA, ROAS: per-arm samples

	DirectionMaximize = "maximize"
	DirectionMinimize = "minimize"
)

// Measurement methods, graded into conclusion quality.
const (
	MeasurementConversionTracked = "conversion_tracked" // grade A
	MeasurementClickProxy        = "click_proxy"        // grade B
	MeasurementEstimated         = "estimated"          // grade C
)

// ExperimentProtocol fixes the decision thresholds before the experiment
// starts.
type ExperimentProtocol struct {
	MinImpressionsPerArm int64   `json:"min_impressions_per_arm"`
	MinRunningDays       int     `json:"min_running_days"`
	MaxRunningDays       int     `json:"max_running_days"`
	BaselineRate         float64 `json:"baseline_rate"`
	WinnerThreshold      float64 `json:"winner_threshold"` // P(best) needed to declare a winner
	MinRelativeLift      float64 `json:"min_relative_lift"`
}

// Experiment is one A/B test over creative variants.
type Experiment struct {
	ID              string             `json:"id"`
	BrandID         string             `json:"brand_id"`
	Name            string             `json:"name"`
	Status          string             `json:"status"`
	MetricKind      string             `json:"metric_kind"`
	Direction       string             `json:"direction"`
	Measurement     string             `json:"measurement"`
	Protocol        ExperimentProtocol `json:"protocol"`
	Arms            []*ExperimentArm   `json:"arms"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	ConcludedAt     *time.Time         `json:"concluded_at,omitempty"`
	WinningArmID    *string            `json:"winning_arm_id,omitempty"`
	ConclusionGrade string             `json:"conclusion_grade,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ExperimentArm is one control or treatment variant.
type ExperimentArm struct {
	ID           string `json:"id"`
	ExperimentID string `json:"experiment_id"`
	Name         string `json:"name"`
	IsControl    bool   `json:"is_control"`
	Impressions  int64  `json:"impressions"`
	Conversions  int64  `json:"conversions"`
	// Continuous-metric summary, unused for binary metrics.
	SampleCount    int64   `json:"sample_count"`
	SampleMean     float64 `json:"sample_mean"`
	SampleVariance float64 `json:"sample_variance"`
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusConcluded, StatusStoppedFutile, StatusInconclusive:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is
// allowed. Terminal states are final; force-conclude goes through
// analyzing like any other conclusion.
func CanTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusRunning
	case StatusRunning:
		return to == StatusAnalyzing
	case StatusAnalyzing:
		return to == StatusRunning || IsTerminal(to)
	}
	return false
}

// RunningDays returns whole days the experiment has been live.
func (e *Experiment) RunningDays(now time.Time) int {
	if e.StartedAt == nil {
		return 0
	}
	return int(now.Sub(*e.StartedAt).Hours() / 24)
}

// ConclusionGradeFor maps a measurement method to a conclusion quality
// grade.
func ConclusionGradeFor(measurement string) string {
	switch measurement {
	case MeasurementConversionTracked:
		return "A"
	case MeasurementClickProxy:
		return "B"
	default:
		return "C"
	}
}
