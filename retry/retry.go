// Package retry provides a bounded backoff executor for fallible remote
// calls. The delay before attempt k (k >= 2) is BaseDelay * (k-1), linear
// in the attempt count, which keeps total wait short for the small attempt
// budgets used against the memory and completion services.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Defaults for the executor.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Options configures a retried operation.
type Options struct {
	// MaxAttempts is the total number of attempts (not re-attempts).
	MaxAttempts int
	// BaseDelay scales the linear backoff between attempts.
	BaseDelay time.Duration
	// OnRetry, when set, is invoked before each re-attempt with the attempt
	// number about to run (2-based) and the previous error.
	OnRetry func(attempt int, err error)
}

// Do executes op until it succeeds or the attempt budget is exhausted,
// returning the last error in the latter case. All attempts run the same
// logical operation; no state is shared between attempts. Context
// cancellation aborts the wait between attempts immediately.
func Do(ctx context.Context, op func(ctx context.Context) error, optFns ...func(o *Options)) error {
	opts := Options{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			if opts.OnRetry != nil {
				opts.OnRetry(attempt, lastErr)
			}
			delay := time.Duration(attempt-1) * opts.BaseDelay
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := op(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("operation failed after %d attempts: %w", opts.MaxAttempts, lastErr)
}

// DoValue is the value-returning form of Do. On exhaustion it returns the
// zero value of T alongside the wrapped last error.
func DoValue[T any](ctx context.Context, op func(ctx context.Context) (T, error), optFns ...func(o *Options)) (T, error) {
	var out T
	err := Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, optFns...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
