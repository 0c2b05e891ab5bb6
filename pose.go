package particlefilter

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

const twoPi = 2 * math.Pi

// Landmark is a fixed, known point of the world.
type Landmark struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// World is a square toroidal plane of side Size with a shared set of landmarks.
type World struct {
	Size      float64
	Landmarks []Landmark
}

// Pose is a position plus heading. Orientation is in radians.
type Pose struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Orientation float64 `yaml:"orientation"`
}

// NoiseProfile holds the standard deviations of the zero mean gaussian noise
// applied to forward motion, turning and sensing.
type NoiseProfile struct {
	Forward float64 `yaml:"forward"`
	Turn    float64 `yaml:"turn"`
	Sense   float64 `yaml:"sense"`
}

func (n NoiseProfile) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"forward", n.Forward}, {"turn", n.Turn}, {"sense", n.Sense}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) || v.value < 0 {
			return fmt.Errorf("%s noise must be a finite non-negative number, got %g", v.name, v.value)
		}
	}
	return nil
}

// Kind tells which measurement model an agent uses. The zero Kind is unset.
type Kind uint8

const (
	// Tracked agents measure their range to every landmark.
	Tracked Kind = iota + 1
	// Shadowed agents measure their range to the tracked agent.
	Shadowed
)

func (k Kind) String() string {
	switch k {
	case Tracked:
		return "tracked"
	case Shadowed:
		return "shadowed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Agent is an immutable snapshot of one agent, real or hypothesized.
type Agent struct {
	Pose  Pose
	Noise NoiseProfile
	Kind  Kind
}

// NewPose validates and builds a pose. Coordinates must lie in [0, Size) and the
// orientation in [0, 2pi).
func (w World) NewPose(x, y, orientation float64) (Pose, error) {
	if !inRange(x, w.Size) {
		return Pose{}, &InvalidPoseError{Field: "x", Value: x, Limit: w.Size}
	}
	if !inRange(y, w.Size) {
		return Pose{}, &InvalidPoseError{Field: "y", Value: y, Limit: w.Size}
	}
	if !inRange(orientation, twoPi) {
		return Pose{}, &InvalidPoseError{Field: "orientation", Value: orientation, Limit: twoPi}
	}
	return Pose{X: x, Y: y, Orientation: orientation}, nil
}

// RandomPose draws x, y and orientation uniformly, in that order.
func (w World) RandomPose(rng *rand.Rand) Pose {
	x := wrap(rng.Float64()*w.Size, w.Size)
	y := wrap(rng.Float64()*w.Size, w.Size)
	heading := wrap(rng.Float64()*twoPi, twoPi)
	return Pose{X: x, Y: y, Orientation: heading}
}

// NewAgent builds an agent after validating its pose and noise profile.
func (w World) NewAgent(kind Kind, pose Pose, noise NoiseProfile) (Agent, error) {
	p, err := w.NewPose(pose.X, pose.Y, pose.Orientation)
	if err != nil {
		return Agent{}, err
	}
	if err := noise.Validate(); err != nil {
		return Agent{}, err
	}
	return Agent{Pose: p, Noise: noise, Kind: kind}, nil
}

// Distance is the plain euclidean distance between two points. Sensors do not
// see through the wraparound.
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

func (p Pose) DistanceTo(x, y float64) float64 {
	return Distance(p.X, p.Y, x, y)
}

func inRange(v, limit float64) bool {
	return v >= 0 && v < limit
}

// wrap is the euclidean modulo: the result is always in [0, m), also for
// negative v.
func wrap(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	// -tiny + m rounds to m
	if r >= m {
		r = 0
	}
	return r
}
