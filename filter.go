package particlefilter

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Control is the command given to a real agent for one step.
type Control struct {
	Turn    float64 `yaml:"turn"`
	Forward float64 `yaml:"forward"`
}

// Phase names the point of a step at which an Observer is called.
type Phase string

const (
	PhaseInitial   Phase = "initial"
	PhasePredicted Phase = "predicted"
	PhaseResampled Phase = "resampled"
)

// Snapshot is a copy of the filter state handed to observers.
type Snapshot struct {
	Step              int
	Tracked           Pose
	Shadowed          Pose
	TrackedParticles  []Pose
	ShadowedParticles []Pose
}

// Observer receives snapshots during a run, e.g. to draw the belief.
type Observer func(Phase, Snapshot)

// StepReport summarizes one completed step.
type StepReport struct {
	Step int

	// Measurements taken by the real agents.
	LandmarkRanges []float64
	RelativeRange  float64

	// Mean toroidal distance of each population to its real agent, before and
	// after resampling.
	TrackedErrorPredicted  float64
	ShadowedErrorPredicted float64
	TrackedError           float64
	ShadowedError          float64
}

type Option func(*ParticleFilter)

func WithLogger(l *zap.Logger) Option {
	return func(pf *ParticleFilter) {
		if l != nil {
			pf.logger = l
		}
	}
}

// WithRand replaces the generator seeded from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(pf *ParticleFilter) {
		if rng != nil {
			pf.rng = rng
		}
	}
}

func WithObserver(o Observer) Option {
	return func(pf *ParticleFilter) {
		pf.observer = o
	}
}

// ParticleFilter tracks a landmark ranging agent and a shadowed agent that
// only knows its range to the first one. Both real agents are simulated as
// ground truth alongside the two particle populations.
type ParticleFilter struct {
	id     uuid.UUID
	cfg    Config
	world  World
	rng    *rand.Rand
	logger *zap.Logger

	observer Observer

	tracked  Agent
	shadowed Agent

	trackedParticles  Population
	shadowedParticles Population

	iteration int
}

// CreatePF creates a particle filter with random particles. The real agents
// start at the configured poses or at random ones.
//
// Draw order: tracked agent pose, shadowed agent pose, then for every index
// the tracked particle followed by the shadowed particle.
func CreatePF(cfg Config, opts ...Option) (*ParticleFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pf := &ParticleFilter{
		id:     uuid.New(),
		cfg:    cfg,
		world:  cfg.World(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(pf)
	}
	pf.logger = pf.logger.With(zap.Stringer("run", pf.id))

	pf.tracked = pf.createAgent(Tracked, cfg.TrackedStart, cfg.TrackedNoise)
	pf.shadowed = pf.createAgent(Shadowed, cfg.ShadowedStart, cfg.ShadowedNoise)

	pf.trackedParticles = Population{Kind: Tracked, Particles: make([]Agent, cfg.Particles)}
	pf.shadowedParticles = Population{Kind: Shadowed, Particles: make([]Agent, cfg.Particles)}
	for i := 0; i < cfg.Particles; i++ {
		pf.trackedParticles.Particles[i] = pf.createAgent(Tracked, nil, cfg.TrackedNoise)
		pf.shadowedParticles.Particles[i] = pf.createAgent(Shadowed, nil, cfg.ShadowedNoise)
	}

	pf.logger.Info("particle filter created",
		zap.Int("particles", cfg.Particles),
		zap.Float64("world_size", cfg.WorldSize),
		zap.Int("landmarks", len(cfg.Landmarks)),
		zap.Uint64("seed", cfg.Seed),
	)
	pf.notify(PhaseInitial)

	return pf, nil
}

// createAgent uses start when set, a random pose otherwise. start has been
// validated by Config.Validate.
func (pf *ParticleFilter) createAgent(kind Kind, start *Pose, noise NoiseProfile) Agent {
	if start != nil {
		return Agent{Pose: *start, Noise: noise, Kind: kind}
	}
	return Agent{Pose: pf.world.RandomPose(pf.rng), Noise: noise, Kind: kind}
}

func (pf *ParticleFilter) ID() uuid.UUID { return pf.id }

func (pf *ParticleFilter) World() World { return pf.world }

// StepCount is the number of completed steps.
func (pf *ParticleFilter) StepCount() int { return pf.iteration }

func (pf *ParticleFilter) Tracked() Agent { return pf.tracked }

func (pf *ParticleFilter) Shadowed() Agent { return pf.shadowed }

// TrackedParticles returns a copy of the tracked population.
func (pf *ParticleFilter) TrackedParticles() Population { return clonePopulation(pf.trackedParticles) }

// ShadowedParticles returns a copy of the shadowed population.
func (pf *ParticleFilter) ShadowedParticles() Population {
	return clonePopulation(pf.shadowedParticles)
}

// EstimatedTracked is the mean pose of the tracked population.
func (pf *ParticleFilter) EstimatedTracked() Pose {
	return pf.world.Estimate(pf.trackedParticles.Poses())
}

// EstimatedShadowed is the mean pose of the shadowed population.
func (pf *ParticleFilter) EstimatedShadowed() Pose {
	return pf.world.Estimate(pf.shadowedParticles.Poses())
}

func (pf *ParticleFilter) Snapshot() Snapshot {
	return Snapshot{
		Step:              pf.iteration,
		Tracked:           pf.tracked.Pose,
		Shadowed:          pf.shadowed.Pose,
		TrackedParticles:  pf.trackedParticles.Poses(),
		ShadowedParticles: pf.shadowedParticles.Poses(),
	}
}

// Reinitialize replaces one population with random particles. It is never
// called by the filter itself; callers may use it to recover from a
// *DegenerateWeightsError.
func (pf *ParticleFilter) Reinitialize(kind Kind) {
	switch kind {
	case Tracked:
		pf.trackedParticles = pf.world.NewPopulation(pf.rng, Tracked, pf.cfg.Particles, pf.cfg.TrackedNoise)
	case Shadowed:
		pf.shadowedParticles = pf.world.NewPopulation(pf.rng, Shadowed, pf.cfg.Particles, pf.cfg.ShadowedNoise)
	default:
		return
	}
	pf.logger.Info("population reinitialized", zap.Stringer("population", kind), zap.Int("step", pf.iteration))
}

// Step runs one predict, observe, weight and resample cycle. The filter state
// only changes when the whole step succeeds.
func (pf *ParticleFilter) Step(trackedCtl, shadowedCtl Control) (StepReport, error) {
	step := pf.iteration + 1
	log := pf.logger.With(zap.Int("step", step))

	// predict: real agents first, then the particles with the same controls
	tracked, err := pf.tracked.Move(pf.world, pf.rng, trackedCtl.Turn, trackedCtl.Forward)
	if err != nil {
		return StepReport{}, fmt.Errorf("moving tracked agent: %w", err)
	}
	shadowed, err := pf.shadowed.Move(pf.world, pf.rng, shadowedCtl.Turn, shadowedCtl.Forward)
	if err != nil {
		return StepReport{}, fmt.Errorf("moving shadowed agent: %w", err)
	}
	trackedPop, shadowedPop, err := pf.predict(trackedCtl, shadowedCtl)
	if err != nil {
		return StepReport{}, err
	}

	report := StepReport{
		Step:                   step,
		TrackedErrorPredicted:  pf.world.MeanToroidalDistance(tracked.Pose, trackedPop.Poses()),
		ShadowedErrorPredicted: pf.world.MeanToroidalDistance(shadowed.Pose, shadowedPop.Poses()),
	}
	if pf.observer != nil {
		pf.observer(PhasePredicted, Snapshot{
			Step:              step,
			Tracked:           tracked.Pose,
			Shadowed:          shadowed.Pose,
			TrackedParticles:  trackedPop.Poses(),
			ShadowedParticles: shadowedPop.Poses(),
		})
	}

	// observe with the true poses
	report.LandmarkRanges = pf.world.SenseLandmarks(pf.rng, tracked)
	report.RelativeRange = SenseRange(pf.rng, shadowed, tracked.Pose)

	trackedWeights, shadowedWeights, err := pf.weigh(
		trackedPop, shadowedPop,
		LandmarkReading{World: pf.world, Ranges: report.LandmarkRanges},
		CoupledRangeReading{Range: report.RelativeRange, References: trackedPop.Poses()},
	)
	if err != nil {
		return StepReport{}, err
	}

	resampledTracked, err := Resample(pf.rng, trackedPop.Particles, trackedWeights)
	if err != nil {
		return StepReport{}, pf.resampleError(log, Tracked, err)
	}
	resampledShadowed, err := Resample(pf.rng, shadowedPop.Particles, shadowedWeights)
	if err != nil {
		return StepReport{}, pf.resampleError(log, Shadowed, err)
	}

	pf.tracked = tracked
	pf.shadowed = shadowed
	pf.trackedParticles = Population{Kind: Tracked, Particles: resampledTracked}
	pf.shadowedParticles = Population{Kind: Shadowed, Particles: resampledShadowed}
	pf.iteration = step

	report.TrackedError = pf.world.MeanToroidalDistance(tracked.Pose, pf.trackedParticles.Poses())
	report.ShadowedError = pf.world.MeanToroidalDistance(shadowed.Pose, pf.shadowedParticles.Poses())

	log.Debug("step complete",
		zap.Float64("tracked_error_predicted", report.TrackedErrorPredicted),
		zap.Float64("shadowed_error_predicted", report.ShadowedErrorPredicted),
		zap.Float64("tracked_error", report.TrackedError),
		zap.Float64("shadowed_error", report.ShadowedError),
	)
	pf.notify(PhaseResampled)

	return report, nil
}

// predict moves particle i of both populations in turn, tracked first.
func (pf *ParticleFilter) predict(trackedCtl, shadowedCtl Control) (Population, Population, error) {
	n := pf.trackedParticles.Len()
	trackedPop := Population{Kind: Tracked, Particles: make([]Agent, n)}
	shadowedPop := Population{Kind: Shadowed, Particles: make([]Agent, n)}
	for i := 0; i < n; i++ {
		t, err := pf.trackedParticles.Particles[i].Move(pf.world, pf.rng, trackedCtl.Turn, trackedCtl.Forward)
		if err != nil {
			return Population{}, Population{}, fmt.Errorf("moving tracked particle %d: %w", i, err)
		}
		s, err := pf.shadowedParticles.Particles[i].Move(pf.world, pf.rng, shadowedCtl.Turn, shadowedCtl.Forward)
		if err != nil {
			return Population{}, Population{}, fmt.Errorf("moving shadowed particle %d: %w", i, err)
		}
		trackedPop.Particles[i] = t
		shadowedPop.Particles[i] = s
	}
	return trackedPop, shadowedPop, nil
}

// weigh computes both weight vectors. Nothing here draws from the generator,
// so the two populations can be weighted concurrently.
func (pf *ParticleFilter) weigh(trackedPop, shadowedPop Population, tr, sr Reading) ([]float64, []float64, error) {
	var trackedWeights, shadowedWeights []float64
	if !pf.cfg.ParallelWeighting {
		return trackedPop.Weights(tr), shadowedPop.Weights(sr), nil
	}

	var g errgroup.Group
	g.Go(func() error {
		trackedWeights = trackedPop.Weights(tr)
		return nil
	})
	g.Go(func() error {
		shadowedWeights = shadowedPop.Weights(sr)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return trackedWeights, shadowedWeights, nil
}

func (pf *ParticleFilter) resampleError(log *zap.Logger, kind Kind, err error) error {
	var degenerate *DegenerateWeightsError
	if errors.As(err, &degenerate) {
		degenerate.Population = kind
		log.Warn("degenerate weights", zap.Stringer("population", kind), zap.Int("particles", degenerate.N))
		return degenerate
	}
	return fmt.Errorf("resampling %s population: %w", kind, err)
}

func (pf *ParticleFilter) notify(phase Phase) {
	if pf.observer != nil {
		pf.observer(phase, pf.Snapshot())
	}
}

func clonePopulation(p Population) Population {
	particles := make([]Agent, len(p.Particles))
	copy(particles, p.Particles)
	return Population{Kind: p.Kind, Particles: particles}
}
