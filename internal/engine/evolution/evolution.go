// Package evolution mutates winning creatives: it qualifies winners,
// picks which variable to change next using uncertainty-weighted
// sampling, enforces per-ad and per-lineage caps, and validates the
// fan-out of a generation batch.
package evolution

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain"
	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
	"github.com/RyeMcKenzie81/creative-engine/internal/engine/belief"
)

// Default caps and qualification thresholds.
const (
	DefaultMaxIterationsPerWinner = 5
	DefaultMaxRoundsPerRoot       = 10
	DefaultMinReward              = 0.6
	DefaultMinImpressions         = 1000
)

// Criteria qualifies ads as winners.
type Criteria struct {
	MinReward      float64
	MinImpressions int64
}

func DefaultCriteria() Criteria {
	return Criteria{MinReward: DefaultMinReward, MinImpressions: DefaultMinImpressions}
}

// Qualifies reports whether an ad meets both winner thresholds.
func (c Criteria) Qualifies(ad *models.WinnerAd) bool {
	return ad.Reward >= c.MinReward && ad.Impressions >= c.MinImpressions
}

// Caps bound how far any ad or lineage may be evolved.
type Caps struct {
	MaxIterationsPerWinner int
	MaxRoundsPerRoot       int
}

func DefaultCaps() Caps {
	return Caps{
		MaxIterationsPerWinner: DefaultMaxIterationsPerWinner,
		MaxRoundsPerRoot:       DefaultMaxRoundsPerRoot,
	}
}

// priorityWeights biases variable selection toward the dimensions most
// worth learning about. Used unnormalized.
var priorityWeights = map[string]float64{
	models.DimHookType:         1.0,
	models.DimColorMode:        0.8,
	models.DimTemplateCategory: 0.7,
	models.DimAwarenessStage:   0.6,
	models.DimContentSource:    0.5,
	models.DimCanvasSize:       0.3,
}

// Mutation is a planned change to one winner ad, to be executed by the
// generation pipeline and recorded as a lineage edge.
type Mutation struct {
	Mode string `json:"mode"`
	// Variable is the element dimension to change; set only for
	// iterate_variable mode.
	Variable string `json:"variable,omitempty"`
	// Round is the child's round number, parent round + 1.
	Round int `json:"round"`
}

// Engine plans mutations. The random source is injected for reproducible
// draws.
type Engine struct {
	criteria Criteria
	caps     Caps
	rng      *rand.Rand
}

func NewEngine(criteria Criteria, caps Caps, rng *rand.Rand) (*Engine, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if caps.MaxIterationsPerWinner <= 0 || caps.MaxRoundsPerRoot <= 0 {
		return nil, fmt.Errorf("%w: caps must be positive", domain.ErrInvalidInput)
	}
	return &Engine{criteria: criteria, caps: caps, rng: rng}, nil
}

// SelectMutation plans the next mutation for a winner. iterations is how
// many times this specific ad has already been iterated. Cap checks run
// before any selection work; exceeding one is a capacity error telling
// the caller to stop evolving this ad, not to retry.
func (e *Engine) SelectMutation(ad *models.WinnerAd, snap *belief.Snapshot, mode string, iterations int) (*Mutation, error) {
	if !e.criteria.Qualifies(ad) {
		return nil, fmt.Errorf("%w: ad %s has reward %.2f and %d impressions", domain.ErrNotAWinner, ad.AdID, ad.Reward, ad.Impressions)
	}
	if iterations >= e.caps.MaxIterationsPerWinner {
		return nil, fmt.Errorf("%w: ad %s already iterated %d times", domain.ErrIterationCapReached, ad.AdID, iterations)
	}
	if ad.Round >= e.caps.MaxRoundsPerRoot {
		return nil, fmt.Errorf("%w: lineage of %s already at round %d", domain.ErrRoundCapReached, ad.RootAdID, ad.Round)
	}

	m := &Mutation{Mode: mode, Round: ad.Round + 1}
	if mode != models.ModeIterateVariable {
		return m, nil
	}

	variable, err := e.drawVariable(ad, snap)
	if err != nil {
		return nil, err
	}
	m.Variable = variable
	return m, nil
}

// LineageEdge materializes the append-only record for an executed
// mutation.
func (m *Mutation) LineageEdge(ad *models.WinnerAd, childAdID string) *models.AdLineage {
	root := ad.RootAdID
	if root == "" {
		root = ad.AdID
	}
	return &models.AdLineage{
		BrandID:         ad.BrandID,
		RootAdID:        root,
		ParentAdID:      ad.AdID,
		ChildAdID:       childAdID,
		Mode:            m.Mode,
		VariableChanged: m.Variable,
		Round:           m.Round,
	}
}

// drawVariable samples one of the ad's element dimensions, weighted by
// posterior variance times priority. High uncertainty about a
// high-priority dimension is the signal that changing it teaches the
// most.
func (e *Engine) drawVariable(ad *models.WinnerAd, snap *belief.Snapshot) (string, error) {
	type weighted struct {
		name   string
		weight float64
	}

	var pool []weighted
	var total float64
	for _, name := range models.Dimensions() {
		value, ok := ad.Elements[name]
		if !ok {
			continue
		}
		priority, ok := priorityWeights[name]
		if !ok {
			continue
		}
		p, _ := snap.Posterior(name, value)
		w := p.Variance() * priority
		if w <= 0 {
			continue
		}
		pool = append(pool, weighted{name: name, weight: w})
		total += w
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("%w: ad %s", domain.ErrNoMutableVariables, ad.AdID)
	}

	target := e.rng.Float64() * total
	for _, c := range pool {
		target -= c.weight
		if target <= 0 {
			return c.name, nil
		}
	}
	return pool[len(pool)-1].name, nil
}

// MaxFanOut caps how many ads one template may spawn in a single
// generation batch.
const MaxFanOut = 50

// FanOutPlan is the validated shape of one generation batch.
type FanOutPlan struct {
	Variations     int  `json:"variations"`
	CanvasSizes    int  `json:"canvas_sizes"`
	ColorModes     int  `json:"color_modes"`
	PerTemplateAds int  `json:"per_template_ads"`
	Clamped        bool `json:"clamped"`
}

// ValidateFanOut clamps a requested variation count so that
// variations * canvasSizes * colorModes stays within MaxFanOut. A
// clamp is logged, not an error: the batch proceeds at reduced width.
func ValidateFanOut(logger *slog.Logger, variations, canvasSizes, colorModes int) (FanOutPlan, error) {
	if variations <= 0 || canvasSizes <= 0 || colorModes <= 0 {
		return FanOutPlan{}, fmt.Errorf("%w: fan-out factors must be positive", domain.ErrInvalidInput)
	}

	plan := FanOutPlan{Variations: variations, CanvasSizes: canvasSizes, ColorModes: colorModes}
	perVariation := canvasSizes * colorModes
	if variations*perVariation > MaxFanOut {
		plan.Variations = MaxFanOut / perVariation
		plan.Clamped = true
		logger.Warn("fan-out exceeds cap, clamping variations",
			"requested_variations", variations,
			"canvas_sizes", canvasSizes,
			"color_modes", colorModes,
			"requested_ads", variations*perVariation,
			"max_fan_out", MaxFanOut,
			"clamped_variations", plan.Variations)
	}
	plan.PerTemplateAds = plan.Variations * perVariation
	return plan, nil
}
