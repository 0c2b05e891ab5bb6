package particlefilter

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Population is an ordered set of particles of one kind. It is rebuilt as a
// whole every step; the order only matters for the tracked/shadowed coupling.
type Population struct {
	Kind      Kind
	Particles []Agent
}

// NewPopulation creates n particles with random poses and the given noise.
func (w World) NewPopulation(rng *rand.Rand, kind Kind, n int, noise NoiseProfile) Population {
	particles := make([]Agent, n)
	for i := range particles {
		particles[i] = Agent{Pose: w.RandomPose(rng), Noise: noise, Kind: kind}
	}
	return Population{Kind: kind, Particles: particles}
}

func (p Population) Len() int {
	return len(p.Particles)
}

// Move moves every particle with the same control, in index order, and returns
// the moved population. p is left untouched.
func (p Population) Move(w World, rng *rand.Rand, turn, forward float64) (Population, error) {
	moved := make([]Agent, len(p.Particles))
	for i, a := range p.Particles {
		next, err := a.Move(w, rng, turn, forward)
		if err != nil {
			return Population{}, fmt.Errorf("moving %s particle %d: %w", p.Kind, i, err)
		}
		moved[i] = next
	}
	return Population{Kind: p.Kind, Particles: moved}, nil
}

// Poses returns a copy of the particle poses.
func (p Population) Poses() []Pose {
	poses := make([]Pose, len(p.Particles))
	for i, a := range p.Particles {
		poses[i] = a.Pose
	}
	return poses
}

// Weights weights every particle against r.
func (p Population) Weights(r Reading) []float64 {
	return CalculateWeights(p.Particles, r)
}

// Estimate returns the mean pose of the particles. Positions are averaged as
// angles on the torus so that a cloud straddling an edge is not pulled to the
// middle of the world.
func (w World) Estimate(poses []Pose) Pose {
	if len(poses) == 0 {
		return Pose{}
	}
	xs := make([]float64, len(poses))
	ys := make([]float64, len(poses))
	hs := make([]float64, len(poses))
	scale := twoPi / w.Size
	for i, p := range poses {
		xs[i] = p.X * scale
		ys[i] = p.Y * scale
		hs[i] = p.Orientation
	}
	x := stat.CircularMean(xs, nil)
	y := stat.CircularMean(ys, nil)
	h := stat.CircularMean(hs, nil)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(h) {
		return Pose{}
	}
	return Pose{
		X:           wrap(x/scale, w.Size),
		Y:           wrap(y/scale, w.Size),
		Orientation: wrap(h, twoPi),
	}
}
