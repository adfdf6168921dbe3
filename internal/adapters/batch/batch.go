// Package batch runs independent upstream fetches in fixed-size batches with
// a pause between batches, so that public APIs are not hammered.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Defaults match the rate limits of the public F1 APIs.
const (
	defaultSize  = 5
	defaultDelay = 500 * time.Millisecond
)

// Task processes item i. A failing task does not stop its siblings.
type Task func(ctx context.Context, i int) error

// Runner executes tasks in batches.
type Runner struct {
	size  int
	delay time.Duration
	name  string
	log   logger.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		size:  defaultSize,
		delay: defaultDelay,
		name:  "batch",
		log:   logger.Get().Named("batch"),
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes task for every index in [0, n). Batches run one after
// another; tasks inside a batch run concurrently. Task errors are joined
// and returned after every batch has run. A cancelled ctx stops further
// batches from starting.
func (r *Runner) Run(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	batches := lo.Chunk(lo.Range(n), r.size)
	for b, indices := range batches {
		if b > 0 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return errors.Join(append(errs, fmt.Errorf("%s: batch %d not started: %w", r.name, b, err))...)
			}
		}

		var g errgroup.Group
		g.SetLimit(r.size)
		for _, i := range indices {
			g.Go(func() error {
				if err := task(ctx, i); err != nil {
					metrics.RecordBatchTask(metrics.OutcomeError)
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s: item %d: %w", r.name, i, err))
					mu.Unlock()
					return nil
				}
				metrics.RecordBatchTask(metrics.OutcomeOK)
				return nil
			})
		}
		_ = g.Wait()
		r.log.Debug(ctx, "batch done",
			logger.String("runner", r.name),
			logger.Int("batch", b+1),
			logger.Int("of", len(batches)),
			logger.Int("size", len(indices)))
	}
	return errors.Join(errs...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
