package main

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	pf "github.com/jhoydich/coupled-particle-filter"
)

// RunConfig is the demo run file: the filter config plus the controls given to
// the real agents.
type RunConfig struct {
	Filter pf.Config `yaml:"filter"`
	Steps  int       `yaml:"steps"`

	TrackedControl pf.Control `yaml:"tracked_control"`

	// The shadowed agent wanders: every step it turns by a uniform angle in
	// [-ShadowedMaxTurn, ShadowedMaxTurn) and goes forward a uniform distance in
	// [0, ShadowedMaxForward).
	ShadowedMaxTurn    float64 `yaml:"shadowed_max_turn"`
	ShadowedMaxForward float64 `yaml:"shadowed_max_forward"`

	PlotDir   string `yaml:"plot_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		Filter:             pf.DefaultConfig(),
		Steps:              10,
		TrackedControl:     pf.Control{Turn: 0.2, Forward: 10},
		ShadowedMaxTurn:    math.Pi / 4,
		ShadowedMaxForward: 20,
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

func loadRunConfig(r io.Reader) (RunConfig, error) {
	cfg := defaultRunConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return RunConfig{}, fmt.Errorf("decoding run config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func (c RunConfig) validate() error {
	if err := c.Filter.Validate(); err != nil {
		return err
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	}
	if c.TrackedControl.Forward < 0 {
		return fmt.Errorf("tracked_control.forward must not be negative, got %g", c.TrackedControl.Forward)
	}
	if c.ShadowedMaxTurn < 0 || c.ShadowedMaxForward < 0 {
		return fmt.Errorf("shadowed control bounds must not be negative")
	}
	return nil
}

// shadowedControl draws the wandering control: turn first, then distance.
func (c RunConfig) shadowedControl(rng *rand.Rand) pf.Control {
	turn := (rng.Float64() - 0.5) * 2 * c.ShadowedMaxTurn
	forward := rng.Float64() * c.ShadowedMaxForward
	return pf.Control{Turn: turn, Forward: forward}
}
