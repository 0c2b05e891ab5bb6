package particlefilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func referenceWorld() World {
	return DefaultConfig().World()
}

func TestSenseLandmarksWithoutNoise(t *testing.T) {
	w := World{Size: 100, Landmarks: []Landmark{{X: 20, Y: 20}}}
	rng := rand.New(rand.NewSource(1))
	a, err := w.NewAgent(Tracked, Pose{X: 10, Y: 20}, NoiseProfile{})
	require.NoError(t, err)

	z := w.SenseLandmarks(rng, a)
	require.Len(t, z, 1)
	assert.Equal(t, 10.0, z[0])

	const senseNoise = 2.5
	particle := Agent{Pose: Pose{X: 10, Y: 20, Orientation: 1.3}, Noise: NoiseProfile{Sense: senseNoise}, Kind: Tracked}
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi*senseNoise*senseNoise), w.LandmarkLikelihood(particle, z), 1e-12)
}

func TestSenseLandmarksOrder(t *testing.T) {
	w := referenceWorld()
	rng := rand.New(rand.NewSource(1))
	a := Agent{Pose: Pose{X: 30, Y: 25}, Kind: Tracked}

	z := w.SenseLandmarks(rng, a)
	require.Len(t, z, len(w.Landmarks))
	for i, lm := range w.Landmarks {
		assert.InDelta(t, math.Hypot(30-lm.X, 25-lm.Y), z[i], 1e-12)
	}
}

func TestLandmarkLikelihoodFactorizes(t *testing.T) {
	w := referenceWorld()
	a := Agent{Pose: Pose{X: 33, Y: 61, Orientation: 2}, Noise: NoiseProfile{Sense: 3}, Kind: Tracked}
	z := []float64{40, 50, 20, 60}

	want := 1.0
	for i, lm := range w.Landmarks {
		want *= GaussianLikelihood(a.Pose.DistanceTo(lm.X, lm.Y), 3, z[i])
	}
	got := w.LandmarkLikelihood(a, z)
	assert.InEpsilon(t, want, got, 1e-12)

	// landmarks and ranges permuted together
	perm := []int{2, 0, 3, 1}
	permuted := World{Size: w.Size, Landmarks: make([]Landmark, len(perm))}
	permutedZ := make([]float64, len(perm))
	for i, j := range perm {
		permuted.Landmarks[i] = w.Landmarks[j]
		permutedZ[i] = z[j]
	}
	assert.InEpsilon(t, got, permuted.LandmarkLikelihood(a, permutedZ), 1e-12)

	// only the ranges permuted
	assert.NotEqual(t, got, w.LandmarkLikelihood(a, permutedZ))
}

func TestLandmarkLikelihoodLengthMismatch(t *testing.T) {
	w := referenceWorld()
	a := Agent{Pose: Pose{X: 1, Y: 1}, Noise: NoiseProfile{Sense: 1}}
	assert.Equal(t, 0.0, w.LandmarkLikelihood(a, []float64{1, 2}))
}

func TestSenseRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Agent{Pose: Pose{X: 0, Y: 0}, Kind: Shadowed}

	assert.Equal(t, 5.0, SenseRange(rng, a, Pose{X: 3, Y: 4}))

	a.Noise.Sense = 1.5
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi*1.5*1.5), RangeLikelihood(a, 5, Pose{X: 3, Y: 4}), 1e-12)
	assert.Less(t, RangeLikelihood(a, 7, Pose{X: 3, Y: 4}), RangeLikelihood(a, 5, Pose{X: 3, Y: 4}))
}

func TestCoupledRangeReadingUsesCoIndexedReference(t *testing.T) {
	noise := NoiseProfile{Sense: 2}
	shadowed := []Agent{
		{Pose: Pose{X: 10, Y: 10}, Noise: noise, Kind: Shadowed},
		{Pose: Pose{X: 50, Y: 50}, Noise: noise, Kind: Shadowed},
		{Pose: Pose{X: 80, Y: 20}, Noise: noise, Kind: Shadowed},
	}
	refs := []Pose{{X: 12, Y: 10}, {X: 55, Y: 50}, {X: 80, Y: 30}}

	reading := CoupledRangeReading{Range: 4, References: refs}
	before := CalculateWeights(shadowed, reading)
	require.Len(t, before, 3)
	for i := range shadowed {
		assert.Equal(t, RangeLikelihood(shadowed[i], 4, refs[i]), before[i])
	}

	changed := append([]Pose(nil), refs...)
	changed[1] = Pose{X: 51, Y: 53}
	after := CalculateWeights(shadowed, CoupledRangeReading{Range: 4, References: changed})

	assert.Equal(t, before[0], after[0])
	assert.NotEqual(t, before[1], after[1])
	assert.Equal(t, before[2], after[2])
}

func TestCoupledRangeReadingWithoutReference(t *testing.T) {
	reading := CoupledRangeReading{Range: 1, References: []Pose{{X: 1}}}
	assert.Equal(t, 0.0, reading.CalculateWeight(3, Agent{Noise: NoiseProfile{Sense: 1}}))
}

func TestLandmarkReadingWeights(t *testing.T) {
	w := referenceWorld()
	noise := NoiseProfile{Sense: 3}
	truth := Agent{Pose: Pose{X: 40, Y: 60}, Noise: noise, Kind: Tracked}
	rng := rand.New(rand.NewSource(5))
	z := w.SenseLandmarks(rng, Agent{Pose: truth.Pose, Kind: Tracked})

	particles := []Agent{
		truth,
		{Pose: Pose{X: 90, Y: 5}, Noise: noise, Kind: Tracked},
	}
	weights := Population{Kind: Tracked, Particles: particles}.Weights(LandmarkReading{World: w, Ranges: z})
	require.Len(t, weights, 2)
	assert.Greater(t, weights[0], weights[1])
}
