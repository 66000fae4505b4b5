package experiment

import (
	"math/rand"
)

// DefaultDraws is the Monte Carlo sample count per analysis.
const DefaultDraws = 10000

// probBest runs joint posterior draws across all arms and returns, per
// arm, the fraction of draws in which it produced the best value. The
// results sum to 1. better reports whether a beats b for the
// experiment's direction.
func probBest(rng *rand.Rand, samplers []armSampler, draws int, better func(a, b float64) bool) []float64 {
	wins := make([]float64, len(samplers))
	values := make([]float64, len(samplers))

	for d := 0; d < draws; d++ {
		best := 0
		for i, sample := range samplers {
			values[i] = sample(rng)
			if i > 0 && better(values[i], values[best]) {
				best = i
			}
		}
		wins[best]++
	}
	for i := range wins {
		wins[i] /= float64(draws)
	}
	return wins
}
