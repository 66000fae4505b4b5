// Package experiment analyzes A/B tests over creative variants with
// Bayesian posteriors compared by Monte Carlo simulation.
package experiment

import (
	"math"
	"math/rand"

	"github.com/RyeMcKenzie81/creative-engine/internal/domain/models"
)

const (
	// baselinePriorStrength is the pseudo-observation weight given to the
	// protocol's baseline rate when forming binary priors.
	baselinePriorStrength = 20.0
	// priorFloor keeps both Beta parameters at or above 1 so the prior
	// stays proper and unimodal.
	priorFloor = 1.0
)

// armSampler draws one value of the arm's metric from its posterior.
type armSampler func(rng *rand.Rand) float64

// binarySampler builds a Beta posterior sampler for a conversion-rate
// arm. The prior centers on the protocol's baseline rate with
// baselinePriorStrength pseudo-observations, floored so neither
// parameter drops below 1.
func binarySampler(arm *models.ExperimentArm, baselineRate float64) armSampler {
	alpha0 := math.Max(priorFloor, baselineRate*baselinePriorStrength)
	beta0 := math.Max(priorFloor, (1-baselineRate)*baselinePriorStrength)

	alpha := alpha0 + float64(arm.Conversions)
	beta := beta0 + float64(arm.Impressions-arm.Conversions)
	return func(rng *rand.Rand) float64 {
		return sampleBeta(rng, alpha, beta)
	}
}

// continuousSampler builds a Normal-inverse-gamma posterior sampler for
// a continuous-metric arm (CPA, ROAS). The prior is weak: kappa0=1,
// alpha0=1, beta0=1, centered on the arm's own neighborhood via mu0=0
// being dominated after a handful of samples.
func continuousSampler(arm *models.ExperimentArm) armSampler {
	const (
		mu0    = 0.0
		kappa0 = 1.0
		alpha0 = 1.0
		beta0  = 1.0
	)

	n := float64(arm.SampleCount)
	m := arm.SampleMean
	s2 := arm.SampleVariance

	kappaN := kappa0 + n
	muN := (kappa0*mu0 + n*m) / kappaN
	alphaN := alpha0 + n/2
	betaN := beta0 + 0.5*math.Max(0, n-1)*s2 + kappa0*n*(m-mu0)*(m-mu0)/(2*kappaN)

	return func(rng *rand.Rand) float64 {
		variance := betaN / sampleGamma(rng, alphaN, 1)
		return muN + rng.NormFloat64()*math.Sqrt(variance/kappaN)
	}
}

// samplerFor picks the posterior family from the experiment's metric
// kind.
func samplerFor(exp *models.Experiment, arm *models.ExperimentArm) armSampler {
	if exp.MetricKind == models.MetricContinuous {
		return continuousSampler(arm)
	}
	return binarySampler(arm, exp.Protocol.BaselineRate)
}

// posteriorMean returns the analytic posterior mean of the arm's metric,
// used for lift reporting without simulation noise.
func posteriorMean(exp *models.Experiment, arm *models.ExperimentArm) float64 {
	if exp.MetricKind == models.MetricContinuous {
		n := float64(arm.SampleCount)
		return (n * arm.SampleMean) / (1 + n)
	}
	alpha0 := math.Max(priorFloor, exp.Protocol.BaselineRate*baselinePriorStrength)
	beta0 := math.Max(priorFloor, (1-exp.Protocol.BaselineRate)*baselinePriorStrength)
	alpha := alpha0 + float64(arm.Conversions)
	beta := beta0 + float64(arm.Impressions-arm.Conversions)
	return alpha / (alpha + beta)
}

// sampleBeta draws from Beta(a, b) as a ratio of Gamma variates.
func sampleBeta(rng *rand.Rand, a, b float64) float64 {
	x := sampleGamma(rng, a, 1)
	y := sampleGamma(rng, b, 1)
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, scale) with the Marsaglia-Tsang
// squeeze method. Shapes below 1 use the boost x = y * u^(1/shape) with
// y drawn at shape+1.
func sampleGamma(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return sampleGamma(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}
