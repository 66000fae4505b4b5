package experiment

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(rand.New(rand.NewSource(1)), DefaultDraws)
	require.NoError(t, err)
	return e
}

func binaryExperiment(started time.Time, arms ...*models.ExperimentArm) *models.Experiment {
	return &models.Experiment{
		ID:          "exp_1",
		Status:      models.StatusAnalyzing,
		MetricKind:  models.MetricBinary,
		Direction:   models.DirectionMaximize,
		Measurement: models.MeasurementConversionTracked,
		Protocol: models.ExperimentProtocol{
			MinImpressionsPerArm: 100,
			MinRunningDays:       3,
			MaxRunningDays:       30,
			BaselineRate:         0.05,
			WinnerThreshold:      0.95,
			MinRelativeLift:      0.10,
		},
		Arms:      arms,
		StartedAt: &started,
	}
}

func TestProbBestSumsToOne(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 1000, Conversions: 50},
		&models.ExperimentArm{ID: "a", Impressions: 1000, Conversions: 55},
		&models.ExperimentArm{ID: "b", Impressions: 1000, Conversions: 60},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)

	var total float64
	for _, a := range got.Arms {
		total += a.ProbBest
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestClearWinnerConcludes(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 2000, Conversions: 100},
		&models.ExperimentArm{ID: "challenger", Impressions: 2000, Conversions: 300},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)

	assert.Equal(t, DecisionConclude, got.Decision)
	assert.Equal(t, models.StatusConcluded, got.NextStatus)
	require.NotNil(t, got.WinningArmID)
	assert.Equal(t, "challenger", *got.WinningArmID)
	assert.Equal(t, "A", got.Grade)
}

func TestLiftReportedAgainstControl(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 2000, Conversions: 100},
		&models.ExperimentArm{ID: "challenger", Impressions: 2000, Conversions: 150},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)

	assert.Zero(t, got.Arms[0].LiftVsControl)
	// Roughly 50% better than control, damped slightly by the shared prior.
	assert.InDelta(t, 0.5, got.Arms[1].LiftVsControl, 0.05)
}

func TestBelowMinimumsContinues(t *testing.T) {
	started := time.Now().Add(-24 * time.Hour) // one day, needs three
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 2000, Conversions: 100},
		&models.ExperimentArm{ID: "challenger", Impressions: 2000, Conversions: 300},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionContinue, got.Decision)
	assert.Equal(t, models.StatusRunning, got.NextStatus)
	assert.Nil(t, got.WinningArmID)
}

func TestTooFewImpressionsContinues(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 2000, Conversions: 100},
		&models.ExperimentArm{ID: "challenger", Impressions: 50, Conversions: 10},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionContinue, got.Decision)
}

func TestDeadlineWithoutWinnerIsInconclusive(t *testing.T) {
	// Healthy observed lift, so not futile, but the posteriors overlap
	// too much for a 95% winner call. Past the deadline that becomes
	// inconclusive, naming the best-observed arm.
	started := time.Now().Add(-31 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 1000, Conversions: 50},
		&models.ExperimentArm{ID: "challenger", Impressions: 1000, Conversions: 60},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionInconclusive, got.Decision)
	assert.Equal(t, models.StatusInconclusive, got.NextStatus)
	assert.Equal(t, "challenger", got.BestArmID)
	assert.Nil(t, got.WinningArmID)
}

func TestDeadlineEndsUnderpoweredExperiment(t *testing.T) {
	// Impressions never reached the per-arm minimum, so no verdict is
	// possible, but the deadline still ends the experiment instead of
	// letting it run forever.
	started := time.Now().Add(-31 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 40, Conversions: 2},
		&models.ExperimentArm{ID: "challenger", Impressions: 40, Conversions: 4},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionInconclusive, got.Decision)
	assert.Equal(t, models.StatusInconclusive, got.NextStatus)
	assert.Equal(t, "challenger", got.BestArmID)
	assert.Nil(t, got.WinningArmID)
}

func TestHopelessChallengerStopsFutile(t *testing.T) {
	// Identical large arms: neither can win outright, and with a 10%
	// minimum lift requirement the challenger has effectively no chance
	// of clearing it.
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 20000, Conversions: 1000},
		&models.ExperimentArm{ID: "challenger", Impressions: 20000, Conversions: 1000},
	)

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionStopFutile, got.Decision)
	assert.Equal(t, models.StatusStoppedFutile, got.NextStatus)
}

func TestContinuousMinimizeMetric(t *testing.T) {
	started := time.Now().Add(-10 * 24 * time.Hour)
	exp := &models.Experiment{
		ID:          "exp_cpa",
		Status:      models.StatusAnalyzing,
		MetricKind:  models.MetricContinuous,
		Direction:   models.DirectionMinimize,
		Measurement: models.MeasurementClickProxy,
		Protocol: models.ExperimentProtocol{
			MinImpressionsPerArm: 30,
			MinRunningDays:       3,
			MaxRunningDays:       30,
			WinnerThreshold:      0.95,
			MinRelativeLift:      0.05,
		},
		Arms: []*models.ExperimentArm{
			{ID: "control", IsControl: true, SampleCount: 200, SampleMean: 12.0, SampleVariance: 4.0},
			{ID: "cheaper", SampleCount: 200, SampleMean: 8.0, SampleVariance: 4.0},
		},
		StartedAt: &started,
	}

	got, err := testEngine(t).Analyze(exp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, DecisionConclude, got.Decision)
	require.NotNil(t, got.WinningArmID)
	assert.Equal(t, "cheaper", *got.WinningArmID)
	assert.Equal(t, "B", got.Grade)
	assert.Greater(t, got.Arms[1].LiftVsControl, 0.0)
}

func TestAnalyzeRequiresAnalyzingStatus(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "control", IsControl: true, Impressions: 1000, Conversions: 50},
		&models.ExperimentArm{ID: "challenger", Impressions: 1000, Conversions: 60},
	)
	exp.Status = models.StatusRunning

	_, err := testEngine(t).Analyze(exp, time.Now())
	assert.ErrorIs(t, err, domain.ErrExperimentNotLive)
}

func TestAnalyzeRequiresTwoArms(t *testing.T) {
	started := time.Now().Add(-7 * 24 * time.Hour)
	exp := binaryExperiment(started,
		&models.ExperimentArm{ID: "only", IsControl: true, Impressions: 1000, Conversions: 50},
	)

	_, err := testEngine(t).Analyze(exp, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNilRandSourceRejected(t *testing.T) {
	_, err := NewEngine(nil, DefaultDraws)
	assert.Error(t, err)
}

func TestGammaSamplerMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const (
		shape = 3.0
		scale = 2.0
		n     = 20000
	)
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := sampleGamma(rng, shape, scale)
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	assert.InDelta(t, shape*scale, mean, 0.15)
	assert.InDelta(t, shape*scale*scale, variance, 0.6)
}

func TestGammaSamplerSmallShape(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		x := sampleGamma(rng, 0.5, 1)
		require.False(t, math.IsNaN(x))
		require.GreaterOrEqual(t, x, 0.0)
		sum += x
	}
	assert.InDelta(t, 0.5, sum/n, 0.05)
}

func TestBetaSamplerMean(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		x := sampleBeta(rng, 8, 2)
		require.GreaterOrEqual(t, x, 0.0)
		require.LessOrEqual(t, x, 1.0)
		sum += x
	}
	assert.InDelta(t, 0.8, sum/n, 0.01)
}
