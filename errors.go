package particlefilter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWeights is returned by Resample for weight vectors of the wrong
	// length or with negative, NaN or infinite entries.
	ErrInvalidWeights = errors.New("invalid weight vector")

	ErrInvalidConfig = errors.New("invalid configuration")
)

// InvalidPoseError is returned when a pose is explicitly set outside the world.
type InvalidPoseError struct {
	Field string
	Value float64
	Limit float64
}

func (e *InvalidPoseError) Error() string {
	return fmt.Sprintf("pose %s=%g out of range [0, %g)", e.Field, e.Value, e.Limit)
}

// InvalidMotionError is returned for a negative commanded forward distance
// (agents cannot move backwards) or a non-finite control.
type InvalidMotionError struct {
	Turn    float64
	Forward float64
}

func (e *InvalidMotionError) Error() string {
	if e.Forward < 0 {
		return fmt.Sprintf("invalid motion: forward distance %g is negative", e.Forward)
	}
	return fmt.Sprintf("invalid motion: turn %g and forward %g must be finite", e.Turn, e.Forward)
}

// DegenerateWeightsError is returned when every weight of a population is zero
// and the resampling wheel has nothing to select.
// Population is the zero Kind when the error comes straight from Resample.
type DegenerateWeightsError struct {
	Population Kind
	N          int
}

func (e *DegenerateWeightsError) Error() string {
	if e.Population == 0 {
		return fmt.Sprintf("degenerate weights: all %d weights are zero", e.N)
	}
	return fmt.Sprintf("degenerate weights: all %d %s weights are zero", e.N, e.Population)
}
