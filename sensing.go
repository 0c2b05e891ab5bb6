package particlefilter

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Reading is one observation that particles are weighted against. i is the
// particle's index in its population.
type Reading interface {
	CalculateWeight(i int, a Agent) float64
}

// SenseLandmarks returns one noisy range per landmark, in landmark order.
func (w World) SenseLandmarks(rng *rand.Rand, a Agent) []float64 {
	noise := distuv.Normal{Mu: 0, Sigma: a.Noise.Sense, Src: rng}

	z := make([]float64, len(w.Landmarks))
	for i, lm := range w.Landmarks {
		z[i] = a.Pose.DistanceTo(lm.X, lm.Y) + noise.Rand()
	}
	return z
}

// LandmarkLikelihood is the product over landmarks of the density of each
// measured range given the agent's pose. z must be in landmark order.
func (w World) LandmarkLikelihood(a Agent, z []float64) float64 {
	if len(z) != len(w.Landmarks) {
		return 0
	}
	prob := 1.0
	for i, lm := range w.Landmarks {
		prob *= GaussianLikelihood(a.Pose.DistanceTo(lm.X, lm.Y), a.Noise.Sense, z[i])
	}
	return prob
}

// SenseRange returns a noisy range from a to ref.
func SenseRange(rng *rand.Rand, a Agent, ref Pose) float64 {
	noise := distuv.Normal{Mu: 0, Sigma: a.Noise.Sense, Src: rng}
	return a.Pose.DistanceTo(ref.X, ref.Y) + noise.Rand()
}

// RangeLikelihood is the density of the measured range z given that a is at
// its pose and the reference is at ref.
func RangeLikelihood(a Agent, z float64, ref Pose) float64 {
	return GaussianLikelihood(a.Pose.DistanceTo(ref.X, ref.Y), a.Noise.Sense, z)
}

// LandmarkReading weights tracked particles against one set of landmark ranges.
type LandmarkReading struct {
	World  World
	Ranges []float64
}

func (r LandmarkReading) CalculateWeight(_ int, a Agent) float64 {
	return r.World.LandmarkLikelihood(a, r.Ranges)
}

// CoupledRangeReading weights shadowed particles against one measured range.
// Particle i is compared with References[i], the i-th hypothesis of the tracked
// population, so both populations must keep the same order.
type CoupledRangeReading struct {
	Range      float64
	References []Pose
}

func (r CoupledRangeReading) CalculateWeight(i int, a Agent) float64 {
	if i < 0 || i >= len(r.References) {
		return 0
	}
	return RangeLikelihood(a, r.Range, r.References[i])
}

// CalculateWeights computes one weight per particle, in particle order.
func CalculateWeights(particles []Agent, r Reading) []float64 {
	weights := make([]float64, len(particles))
	for i := range particles {
		weights[i] = r.CalculateWeight(i, particles[i])
	}
	return weights
}
