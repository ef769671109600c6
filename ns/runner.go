package ns

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DynamicRunner dispatches one sampler invocation per plan entry. Entries
// are mutually independent, so they may run in parallel; results are
// collected in entry order regardless of completion order. Each entry's
// seed is derived purely from the base key and the entry index, so a rerun
// with the same key and plan reproduces every thread no matter how the
// pool schedules them.
type DynamicRunner struct {
	Sampler    Sampler
	Key        RunKey
	BaseDir    string
	FileRoot   string
	NumRepeats int
	MaxWorkers int // <= 0: one worker per entry
}

// RunThreads realizes every plan entry. Any invocation failure cancels the
// remaining invocations and fails the whole dynamic run: a partially
// realized plan would invalidate the budget and importance invariants, so
// no partial result is ever returned.
func (r *DynamicRunner) RunThreads(ctx context.Context, plan *AllocationPlan) ([]*Run, error) {
	results := make([]*Run, len(plan.Entries))
	g, ctx := errgroup.WithContext(ctx)
	if r.MaxWorkers > 0 {
		g.SetLimit(r.MaxWorkers)
	}
	for i, entry := range plan.Entries {
		i, entry := i, entry
		g.Go(func() error {
			cfg := SamplerConfig{
				NLive:          entry.NLive,
				NumRepeats:     r.NumRepeats,
				Seed:           r.Key.ThreadSeed(i),
				BaseDir:        r.BaseDir,
				FileRoot:       fmt.Sprintf("%s_dyn_%d", r.FileRoot, i),
				StartThreshold: entry.LogLMin,
				MaxDead:        -1,
			}
			logrus.Debugf("dispatching thread %d: %d live points above logl=%v (seed %d)",
				i, entry.NLive, entry.LogLMin, cfg.Seed)
			run, err := r.Sampler.Run(ctx, cfg)
			if err != nil {
				return asThreadFailure(err, i)
			}
			if err := run.Validate(0); err != nil {
				return asThreadFailure(err, i)
			}
			ensureThreadStart(run, entry.LogLMin)
			results[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ensureThreadStart stamps the entry threshold onto threads the sampler
// reported as starting from the whole prior; the merge step needs the
// true contour each thread became active at.
func ensureThreadStart(run *Run, logLMin float64) {
	for t := range run.ThreadMinMax {
		if math.IsInf(run.ThreadMinMax[t][0], -1) && !math.IsInf(logLMin, -1) {
			run.ThreadMinMax[t][0] = logLMin
		}
	}
}

func asThreadFailure(err error, index int) error {
	var extRun *ExternalRunFailure
	if errors.As(err, &extRun) {
		extRun.Stage = "thread"
		extRun.ThreadIndex = index
		return extRun
	}
	return &ExternalRunFailure{Stage: "thread", ThreadIndex: index, Err: err}
}
