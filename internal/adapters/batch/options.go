package batch

import (
	"context"
	"time"

	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithSize sets how many tasks run together in one batch.
func WithSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.size = size
		}
	}
}

// WithDelay sets the pause between consecutive batches.
func WithDelay(delay time.Duration) Option {
	return func(r *Runner) {
		if delay >= 0 {
			r.delay = delay
		}
	}
}

// WithName sets the runner name for identification and logging.
func WithName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSleep replaces the inter-batch wait. Tests use it to record delays
// without sleeping.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}
