package particlefilter

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Move applies a noisy control to a pose: turn first, then go forward. The
// result is wrapped around the torus, never rejected. Two draws are taken from
// rng on every call (turn noise, then forward noise), even when the noise is zero.
func (w World) Move(rng *rand.Rand, p Pose, noise NoiseProfile, turn, forward float64) (Pose, error) {
	if forward < 0 || !isFinite(forward) || !isFinite(turn) {
		return Pose{}, &InvalidMotionError{Turn: turn, Forward: forward}
	}

	turnDist := distuv.Normal{Mu: 0, Sigma: noise.Turn, Src: rng}
	fwdDist := distuv.Normal{Mu: 0, Sigma: noise.Forward, Src: rng}

	heading := wrap(p.Orientation+turn+turnDist.Rand(), twoPi)

	// the realized distance may be negative after noise
	dist := forward + fwdDist.Rand()

	return Pose{
		X:           wrap(p.X+math.Cos(heading)*dist, w.Size),
		Y:           wrap(p.Y+math.Sin(heading)*dist, w.Size),
		Orientation: heading,
	}, nil
}

// Move returns a new agent with the same noise profile and kind.
func (a Agent) Move(w World, rng *rand.Rand, turn, forward float64) (Agent, error) {
	p, err := w.Move(rng, a.Pose, a.Noise, turn, forward)
	if err != nil {
		return Agent{}, err
	}
	return Agent{Pose: p, Noise: a.Noise, Kind: a.Kind}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
