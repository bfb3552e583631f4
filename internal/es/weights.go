package es

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CalculateWeights returns the μ log-rank recombination weights, best rank
// first. Entries are positive, strictly decreasing and sum to 1.
//
// mu must be at least 1; callers validate this before calling.
func CalculateWeights(mu int) []float64 {
	weights := make([]float64, mu)
	top := math.Log10(float64(mu) + 0.5)
	for i := range weights {
		weights[i] = top - math.Log10(float64(i+1))
	}
	total := floats.Sum(weights)
	for i := range weights {
		weights[i] /= total
	}
	return weights
}
