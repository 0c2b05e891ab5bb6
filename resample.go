package particlefilter

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Resample draws len(items) items with replacement, proportionally to weights,
// using the resampling wheel (Sebastian Thrun, OMSCS RAIT particle filter
// lesson). Selected items are copied as they are, no new draws are made for them.
//
// rng is drawn from once for the starting index and once per output slot.
// Weights need not be normalized; the wheel runs on weights scaled by the
// largest one so that beta cannot overflow. All-zero weights return a
// *DegenerateWeightsError since the wheel would never stop.
func Resample[T any](rng *rand.Rand, items []T, weights []float64) ([]T, error) {
	n := len(items)
	if len(weights) != n {
		return nil, fmt.Errorf("%w: %d weights for %d items", ErrInvalidWeights, len(weights), n)
	}
	if n == 0 {
		return []T{}, nil
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 1) {
			return nil, fmt.Errorf("%w: weight %d is %g", ErrInvalidWeights, i, w)
		}
	}

	maxWeight := floats.Max(weights)
	if maxWeight == 0 {
		return nil, &DegenerateWeightsError{N: n}
	}

	// the reciprocal of a subnormal maximum is +Inf
	scaled := make([]float64, n)
	for i, w := range weights {
		scaled[i] = w / maxWeight
	}

	out := make([]T, 0, n)
	index := rng.Intn(n)
	beta := 0.0
	for i := 0; i < n; i++ {
		beta += rng.Float64() * 2
		// zero weight slots are walked past even when beta is exactly 0
		for beta > scaled[index] || scaled[index] == 0 {
			beta -= scaled[index]
			index = (index + 1) % n
		}
		out = append(out, items[index])
	}
	return out, nil
}
