package particlefilter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanToroidalDistance is the mean distance between truth and every particle,
// taking the shortest way around the torus on each axis. It is 0 for an empty
// population.
func (w World) MeanToroidalDistance(truth Pose, particles []Pose) float64 {
	if len(particles) == 0 {
		return 0
	}
	half := w.Size / 2
	dists := make([]float64, len(particles))
	for i, p := range particles {
		dx := wrap(p.X-truth.X+half, w.Size) - half
		dy := wrap(p.Y-truth.Y+half, w.Size) - half
		dists[i] = math.Hypot(dx, dy)
	}
	return stat.Mean(dists, nil)
}
