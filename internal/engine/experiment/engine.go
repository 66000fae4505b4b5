package experiment

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

// Decision is the outcome of one analysis pass.
type Decision string

const (
	// DecisionContinue keeps the experiment running.
	DecisionContinue Decision = "continue"
	// DecisionConclude declares a winner.
	DecisionConclude Decision = "conclude"
	// DecisionStopFutile stops early because the best challenger's
	// observed lift falls short of the required minimum.
	DecisionStopFutile Decision = "stop_futile"
	// DecisionInconclusive ends the experiment at its deadline without a
	// winner, naming the best-observed arm.
	DecisionInconclusive Decision = "inconclusive"
)

// ArmAnalysis is the per-arm result reported to callers.
type ArmAnalysis struct {
	ArmID         string  `json:"arm_id"`
	Name          string  `json:"name"`
	IsControl     bool    `json:"is_control"`
	PosteriorMean float64 `json:"posterior_mean"`
	ProbBest      float64 `json:"prob_best"`
	// LiftVsControl is the relative lift of the posterior mean over the
	// control's, signed so that positive is an improvement in the
	// experiment's direction. Zero for the control itself.
	LiftVsControl float64 `json:"lift_vs_control"`
}

// Analysis is the full result of analyzing one experiment. BestArmID is
// always populated; WinningArmID only when the decision concludes with a
// winner.
type Analysis struct {
	ExperimentID string         `json:"experiment_id"`
	Decision     Decision       `json:"decision"`
	NextStatus   string         `json:"next_status"`
	BestArmID    string         `json:"best_arm_id"`
	WinningArmID *string        `json:"winning_arm_id,omitempty"`
	Grade        string         `json:"grade,omitempty"`
	Arms         []*ArmAnalysis `json:"arms"`
	RunningDays  int            `json:"running_days"`
	Draws        int            `json:"draws"`
}

// Engine analyzes experiments. The random source is injected so analyses
// are reproducible under test.
type Engine struct {
	rng   *rand.Rand
	draws int
}

func NewEngine(rng *rand.Rand, draws int) (*Engine, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if draws <= 0 {
		draws = DefaultDraws
	}
	return &Engine{rng: rng, draws: draws}, nil
}

// Analyze runs posterior comparison and applies the decision rules. The
// experiment must be in analyzing status; the caller owns the actual
// status transition and persistence.
//
// Rules, in order: before the impression and running-day minimums are
// met monitoring continues, except past the deadline, where the result
// is inconclusive, naming the best-observed arm. Once the minimums are
// met, a P(best) at or above the winner threshold concludes with that
// arm; a best-challenger observed lift below the protocol minimum stops
// the experiment as futile; past the deadline without either verdict the
// result is inconclusive; otherwise monitoring continues.
func (e *Engine) Analyze(exp *models.Experiment, now time.Time) (*Analysis, error) {
	if exp.Status != models.StatusAnalyzing {
		return nil, fmt.Errorf("%w: experiment %s is %s", domain.ErrExperimentNotLive, exp.ID, exp.Status)
	}
	if len(exp.Arms) < 2 {
		return nil, fmt.Errorf("%w: experiment %s has %d arms, need at least 2", domain.ErrInvalidInput, exp.ID, len(exp.Arms))
	}

	controlIdx := -1
	samplers := make([]armSampler, len(exp.Arms))
	for i, arm := range exp.Arms {
		samplers[i] = samplerFor(exp, arm)
		if arm.IsControl {
			controlIdx = i
		}
	}

	pBest := probBest(e.rng, samplers, e.draws, betterFunc(exp.Direction))

	analysis := &Analysis{
		ExperimentID: exp.ID,
		RunningDays:  exp.RunningDays(now),
		Draws:        e.draws,
		Arms:         make([]*ArmAnalysis, len(exp.Arms)),
	}

	bestIdx := 0
	for i, arm := range exp.Arms {
		a := &ArmAnalysis{
			ArmID:         arm.ID,
			Name:          arm.Name,
			IsControl:     arm.IsControl,
			PosteriorMean: posteriorMean(exp, arm),
			ProbBest:      pBest[i],
		}
		if controlIdx >= 0 && i != controlIdx {
			a.LiftVsControl = relativeLift(exp.Direction, a.PosteriorMean, posteriorMean(exp, exp.Arms[controlIdx]))
		}
		analysis.Arms[i] = a
		if pBest[i] > pBest[bestIdx] {
			bestIdx = i
		}
	}
	analysis.BestArmID = exp.Arms[bestIdx].ID

	analysis.Decision, analysis.NextStatus = decide(exp, analysis, pBest, bestIdx, controlIdx)
	if analysis.Decision == DecisionConclude {
		winner := exp.Arms[bestIdx].ID
		analysis.WinningArmID = &winner
		analysis.Grade = models.ConclusionGradeFor(exp.Measurement)
	}
	return analysis, nil
}

func decide(exp *models.Experiment, analysis *Analysis, pBest []float64, bestIdx, controlIdx int) (Decision, string) {
	proto := exp.Protocol

	pastDeadline := proto.MaxRunningDays > 0 && analysis.RunningDays >= proto.MaxRunningDays

	// The deadline fires even when the data minimums were never met: an
	// experiment that cannot reach power by its deadline ends rather than
	// running forever.
	if !minimumsReached(exp, analysis.RunningDays) {
		if pastDeadline {
			return DecisionInconclusive, models.StatusInconclusive
		}
		return DecisionContinue, models.StatusRunning
	}
	if pBest[bestIdx] >= proto.WinnerThreshold {
		return DecisionConclude, models.StatusConcluded
	}
	if controlIdx >= 0 && bestChallengerLift(analysis.Arms, controlIdx) < proto.MinRelativeLift {
		return DecisionStopFutile, models.StatusStoppedFutile
	}
	if pastDeadline {
		return DecisionInconclusive, models.StatusInconclusive
	}
	return DecisionContinue, models.StatusRunning
}

// minimumsReached checks the protocol's data and duration floors. Binary
// metrics gate on impressions, continuous ones on sample counts.
func minimumsReached(exp *models.Experiment, runningDays int) bool {
	if runningDays < exp.Protocol.MinRunningDays {
		return false
	}
	for _, arm := range exp.Arms {
		if exp.MetricKind == models.MetricContinuous {
			if arm.SampleCount < exp.Protocol.MinImpressionsPerArm {
				return false
			}
			continue
		}
		if arm.Impressions < exp.Protocol.MinImpressionsPerArm {
			return false
		}
	}
	return true
}

// bestChallengerLift is the largest observed lift over the control among
// non-control arms.
func bestChallengerLift(arms []*ArmAnalysis, controlIdx int) float64 {
	best := 0.0
	for i, a := range arms {
		if i == controlIdx {
			continue
		}
		if a.LiftVsControl > best {
			best = a.LiftVsControl
		}
	}
	return best
}

// betterFunc returns the comparison for the optimization direction.
func betterFunc(direction string) func(a, b float64) bool {
	if direction == models.DirectionMinimize {
		return func(a, b float64) bool { return a < b }
	}
	return func(a, b float64) bool { return a > b }
}

// relativeLift is signed so positive means improvement in the
// experiment's direction.
func relativeLift(direction string, arm, control float64) float64 {
	if control == 0 {
		return 0
	}
	if direction == models.DirectionMinimize {
		return (control - arm) / control
	}
	return (arm - control) / control
}
