package rig

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/config"
	"github.com/san-kum/pantrack/internal/metrics"
	"github.com/san-kum/pantrack/internal/pantilt"
)

// EnsembleRun is one member of an ensemble.
type EnsembleRun struct {
	Seed    uint64
	Result  *Result
	Records []pantilt.Record
	Metrics map[string]float64
}

// Ensemble runs the same simulated scenario under consecutive noise seeds.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart uint64
	// Commands builds a fresh command source per member; scripts keep a
	// cursor so they cannot be shared.
	Commands func() (command.Source, error)
	Registry *Registry
}

func NewEnsemble(base *config.Config, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart, Registry: NewRegistry()}
}

// Run starts every member concurrently and waits for all of them. The
// first member error is returned after the rest have finished.
func (e *Ensemble) Run(ctx context.Context, log *slog.Logger) ([]EnsembleRun, error) {
	if e.base.Actuator != "sim" {
		return nil, fmt.Errorf("ensembles need the sim actuator, got %s", e.base.Actuator)
	}
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("number of runs must be positive, got %d", e.numRuns)
	}

	runs := make([]EnsembleRun, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := *e.base
			cfg.Realtime = false
			cfg.Seed = e.seedStart + uint64(idx)
			cfg.World.Seed = 0
			runs[idx], errs[idx] = e.member(ctx, &cfg, log.With("seed", cfg.Seed))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return runs, fmt.Errorf("seed %d: %w", e.seedStart+uint64(i), err)
		}
	}
	return runs, nil
}

func (e *Ensemble) member(ctx context.Context, cfg *config.Config, log *slog.Logger) (EnsembleRun, error) {
	run := EnsembleRun{Seed: cfg.Seed}

	act, err := e.Registry.Actuator(cfg, log)
	if err != nil {
		return run, err
	}
	src, err := e.Registry.Source(cfg, act, log)
	if err != nil {
		act.Close()
		return run, err
	}

	var cmds command.Source
	if e.Commands != nil {
		if cmds, err = e.Commands(); err != nil {
			act.Close()
			if src != nil {
				src.Close()
			}
			return run, err
		}
	}

	r, err := New(cfg, act, src, cmds, log)
	if err != nil {
		act.Close()
		if src != nil {
			src.Close()
		}
		return run, err
	}
	rec := NewRecorder(0)
	r.AddObserver(rec)

	run.Result, err = r.Run(ctx)
	run.Records = rec.Records()
	run.Metrics = metrics.Evaluate(metrics.Standard(cfg.Motion.PanVMax, cfg.Motion.TiltVMax), run.Records)
	return run, err
}
