package particlefilter

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Landmarks, 4)
	assert.Equal(t, 100.0, cfg.WorldSize)
	assert.Equal(t, 1000, cfg.Particles)
}

func TestLoadConfig(t *testing.T) {
	doc := `
world_size: 50
landmarks:
  - {x: 10, y: 10}
  - {x: 40, y: 25}
particles: 200
seed: 9
tracked_noise: {forward: 1, turn: 0.1, sense: 2}
tracked_start: {x: 5, y: 6, orientation: 0.5}
parallel_weighting: true
`
	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.WorldSize)
	assert.Equal(t, []Landmark{{X: 10, Y: 10}, {X: 40, Y: 25}}, cfg.Landmarks)
	assert.Equal(t, 200, cfg.Particles)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, NoiseProfile{Forward: 1, Turn: 0.1, Sense: 2}, cfg.TrackedNoise)
	assert.Equal(t, DefaultConfig().ShadowedNoise, cfg.ShadowedNoise)
	require.NotNil(t, cfg.TrackedStart)
	assert.Equal(t, Pose{X: 5, Y: 6, Orientation: 0.5}, *cfg.TrackedStart)
	assert.Nil(t, cfg.ShadowedStart)
	assert.True(t, cfg.ParallelWeighting)
}

func TestLoadConfigEmptyDocument(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigUnknownField(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("world_sise: 10\n"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"zero world":          func(c *Config) { c.WorldSize = 0 },
		"no landmarks":        func(c *Config) { c.Landmarks = nil },
		"no particles":        func(c *Config) { c.Particles = 0 },
		"negative noise":      func(c *Config) { c.ShadowedNoise.Turn = -1 },
		"zero sense noise":    func(c *Config) { c.TrackedNoise.Sense = 0 },
		"infinite sense":      func(c *Config) { c.ShadowedNoise.Sense = math.Inf(1) },
		"start outside world": func(c *Config) { c.ShadowedStart = &Pose{X: 100} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := CreatePF(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigWorldCopiesLandmarks(t *testing.T) {
	cfg := DefaultConfig()
	w := cfg.World()
	w.Landmarks[0].X = -1
	assert.Equal(t, 20.0, cfg.Landmarks[0].X)
}

func TestConfigValidateReportsFirstProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackedNoise.Turn = -1
	cfg.ShadowedNoise.Turn = -1
	cfg.TrackedStart = &Pose{X: -1}
	cfg.ShadowedStart = &Pose{X: -1}

	want := cfg.Validate()
	require.Error(t, want)
	assert.Contains(t, want.Error(), "tracked_noise")
	for i := 0; i < 50; i++ {
		assert.Equal(t, want.Error(), cfg.Validate().Error())
	}

	cfg.TrackedNoise.Turn = 0
	cfg.ShadowedNoise.Turn = 0
	assert.Contains(t, cfg.Validate().Error(), "tracked_start")
}
