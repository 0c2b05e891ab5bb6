package particlefilter

import "gonum.org/v1/gonum/stat/distuv"

// GaussianLikelihood returns the normal density with the given mean and standard
// deviation evaluated at observed. It is a density and can exceed 1 for small
// stddev. stddev must be positive.
func GaussianLikelihood(mean, stddev, observed float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: stddev}.Prob(observed)
}
