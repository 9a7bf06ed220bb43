// SPDX-License-Identifier: AGPL-3.0-or-later

// Package runner runs the processor over a set of fixtures in parallel and
// partitions the results.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/invoker"
	"github.com/bartekus/testman/internal/mode"
)

// Observer is told about every run as soon as it completes.
type Observer interface {
	RunFinished(run Run)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Run)

// RunFinished calls f.
func (f ObserverFunc) RunFinished(run Run) { f(run) }

// Runner fans processor invocations out over fixtures and collects them.
type Runner struct {
	invoker  invoker.Invoker
	observer Observer
	log      *slog.Logger
}

// NewRunner creates a runner. obs may be nil.
func NewRunner(inv invoker.Invoker, obs Observer, log *slog.Logger) *Runner {
	if obs == nil {
		obs = ObserverFunc(func(Run) {})
	}
	return &Runner{
		invoker:  inv,
		observer: obs,
		log:      log,
	}
}

// Run launches one invocation per fixture, all outstanding at once, then
// collects them in completion order. Repeated fixture paths run once.
//
// A launch failure aborts the batch: already started processes are killed
// and reaped before the ErrLaunch is returned.
func (r *Runner) Run(ctx context.Context, fixtures []fixture.Fixture, m mode.Mode) (*Batch, error) {
	if !m.Processor() {
		return nil, harnesserr.Configf("mode %s cannot run fixtures", m)
	}

	fixtures = fixture.Dedupe(fixtures)
	batch := &Batch{
		ID:      uuid.NewString(),
		Mode:    m,
		Started: time.Now(),
	}
	log := r.log.With("batch", batch.ID, "mode", m)

	if len(fixtures) == 0 {
		log.Debug("no fixtures to run")
		return batch, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// Sized to the batch so no waiter ever blocks on send.
	results := make(chan Run, len(fixtures))

	var launchErr error
	for _, f := range fixtures {
		f := f
		p, err := r.invoker.Start(gctx, f, m)
		if err != nil {
			launchErr = err
			cancel()
			break
		}
		g.Go(func() error {
			o, err := p.Wait()
			if err != nil {
				return err
			}
			results <- Run{
				Fixture:  f,
				Output:   o.Output,
				Success:  o.Success(),
				ExitCode: o.ExitCode,
				Duration: o.Duration,
			}
			return nil
		})
	}
	log.Debug("processors launched", "fixtures", len(fixtures))

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(results)
	}()

	for run := range results {
		if launchErr != nil {
			continue
		}
		r.observer.RunFinished(run)
		if run.Success {
			batch.Passed = append(batch.Passed, run)
		} else {
			batch.Failed = append(batch.Failed, run)
		}
	}
	err := <-waitErr
	batch.Duration = time.Since(batch.Started)

	if launchErr != nil {
		log.Debug("batch aborted", "error", launchErr)
		return nil, launchErr
	}
	if err != nil {
		log.Debug("batch failed", "error", err)
		return nil, err
	}

	log.Debug("batch finished",
		"total", batch.Total(),
		"passed", len(batch.Passed),
		"failed", len(batch.Failed),
		"duration", batch.Duration)
	return batch, nil
}
