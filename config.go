package particlefilter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config describes one filtering run.
type Config struct {
	WorldSize float64    `yaml:"world_size"`
	Landmarks []Landmark `yaml:"landmarks"`
	Particles int        `yaml:"particles"`
	Seed      uint64     `yaml:"seed"`

	TrackedNoise  NoiseProfile `yaml:"tracked_noise"`
	ShadowedNoise NoiseProfile `yaml:"shadowed_noise"`

	// Optional true start poses. Random when nil.
	TrackedStart  *Pose `yaml:"tracked_start,omitempty"`
	ShadowedStart *Pose `yaml:"shadowed_start,omitempty"`

	// ParallelWeighting weights both populations concurrently. Weighting draws
	// nothing from the generator so results are identical either way.
	ParallelWeighting bool `yaml:"parallel_weighting"`
}

// DefaultConfig is the reference deployment: a 100x100 world with four
// landmarks and 1000 particles per agent.
func DefaultConfig() Config {
	noise := NoiseProfile{Forward: 3.0, Turn: 0.05, Sense: 3.0}
	return Config{
		WorldSize: 100.0,
		Landmarks: []Landmark{
			{X: 20, Y: 20},
			{X: 80, Y: 80},
			{X: 20, Y: 80},
			{X: 80, Y: 20},
		},
		Particles:     1000,
		Seed:          1,
		TrackedNoise:  noise,
		ShadowedNoise: noise,
	}
}

// LoadConfig reads a YAML config. Fields missing from the document keep their
// DefaultConfig value.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) World() World {
	landmarks := make([]Landmark, len(c.Landmarks))
	copy(landmarks, c.Landmarks)
	return World{Size: c.WorldSize, Landmarks: landmarks}
}

// Validate checks the config. Sense noise must be strictly positive since it is
// the standard deviation of the likelihood.
func (c Config) Validate() error {
	if !(c.WorldSize > 0) {
		return fmt.Errorf("%w: world_size must be positive, got %g", ErrInvalidConfig, c.WorldSize)
	}
	if len(c.Landmarks) == 0 {
		return fmt.Errorf("%w: at least one landmark is required", ErrInvalidConfig)
	}
	if c.Particles < 1 {
		return fmt.Errorf("%w: particles must be at least 1, got %d", ErrInvalidConfig, c.Particles)
	}
	for _, n := range []struct {
		name  string
		noise NoiseProfile
	}{{"tracked_noise", c.TrackedNoise}, {"shadowed_noise", c.ShadowedNoise}} {
		if err := n.noise.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, n.name, err)
		}
		if n.noise.Sense == 0 {
			return fmt.Errorf("%w: %s: sense noise must be positive", ErrInvalidConfig, n.name)
		}
	}
	w := c.World()
	for _, s := range []struct {
		name string
		pose *Pose
	}{{"tracked_start", c.TrackedStart}, {"shadowed_start", c.ShadowedStart}} {
		if s.pose == nil {
			continue
		}
		if _, err := w.NewPose(s.pose.X, s.pose.Y, s.pose.Orientation); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.name, err)
		}
	}
	return nil
}
