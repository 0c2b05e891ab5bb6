package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	pf "github.com/jhoydich/coupled-particle-filter"
)

func main() {
	configPath := flag.String("config", "", "YAML run file (defaults to the reference run)")
	seed := flag.Uint64("seed", 0, "override the filter seed when non zero")
	steps := flag.Int("steps", -1, "override the number of turns when not negative")
	plotDir := flag.String("plots", "", "directory for belief PNG snapshots, empty disables plotting")
	logLevel := flag.String("log-level", "", "override the log level")
	flag.Parse()

	cfg, err := readRunConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Filter.Seed = *seed
	}
	if *steps >= 0 {
		cfg.Steps = *steps
	}
	if *plotDir != "" {
		cfg.PlotDir = *plotDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func readRunConfig(path string) (RunConfig, error) {
	if path == "" {
		return defaultRunConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return RunConfig{}, err
	}
	defer f.Close()
	return loadRunConfig(f)
}

func run(cfg RunConfig, logger *zap.Logger) error {
	opts := []pf.Option{pf.WithLogger(logger)}
	if cfg.PlotDir != "" {
		if err := os.MkdirAll(cfg.PlotDir, 0o755); err != nil {
			return err
		}
		world := cfg.Filter.World()
		opts = append(opts, pf.WithObserver(func(phase pf.Phase, s pf.Snapshot) {
			name, err := savePlot(cfg.PlotDir, world, phase, s)
			if err != nil {
				logger.Error("plotting belief", zap.Error(err))
				return
			}
			logger.Debug("belief saved", zap.String("file", name))
		}))
	}

	filter, err := pf.CreatePF(cfg.Filter, opts...)
	if err != nil {
		return err
	}
	logger = logger.With(zap.Stringer("run", filter.ID()))

	snap := filter.Snapshot()
	w := filter.World()
	logger.Info("initial belief",
		zap.Float64("tracked_mean_distance", w.MeanToroidalDistance(snap.Tracked, snap.TrackedParticles)),
		zap.Float64("shadowed_mean_distance", w.MeanToroidalDistance(snap.Shadowed, snap.ShadowedParticles)),
	)

	// the wandering control has its own stream so the filter's draws do not
	// depend on it
	controlRng := rand.New(rand.NewSource(cfg.Filter.Seed + 1))

	for turn := 1; turn <= cfg.Steps; turn++ {
		shadowedCtl := cfg.shadowedControl(controlRng)

		report, err := filter.Step(cfg.TrackedControl, shadowedCtl)
		var degenerate *pf.DegenerateWeightsError
		if errors.As(err, &degenerate) {
			logger.Warn("turn skipped, reinitializing population", zap.Int("turn", turn), zap.Error(err))
			filter.Reinitialize(degenerate.Population)
			continue
		}
		if err != nil {
			return fmt.Errorf("turn %d: %w", turn, err)
		}

		est := filter.EstimatedTracked()
		logger.Info("turn complete",
			zap.Int("turn", turn),
			zap.Float64("shadowed_turn", shadowedCtl.Turn),
			zap.Float64("shadowed_forward", shadowedCtl.Forward),
			zap.Float64("tracked_distance_before_resampling", report.TrackedErrorPredicted),
			zap.Float64("shadowed_distance_before_resampling", report.ShadowedErrorPredicted),
			zap.Float64("tracked_distance_after_resampling", report.TrackedError),
			zap.Float64("shadowed_distance_after_resampling", report.ShadowedError),
			zap.Float64("tracked_estimate_x", est.X),
			zap.Float64("tracked_estimate_y", est.Y),
		)
	}
	return nil
}
