// Package retry runs an operation under a bounded retry policy with a fixed
// schedule of waits between attempts.
package retry

import (
	"context"
	"time"

	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
	"github.com/db-afk/GRAO-tables-processing/pkg/logging"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy describes how an operation is retried. The operation is attempted
// once plus once more after each entry of Delays.
type Policy struct {
	// Name identifies the operation in errors and logs.
	Name string

	// Delays is the wait before each retry.
	Delays []time.Duration

	// Retryable reports whether a failed attempt may be retried. Nil retries
	// every error.
	Retryable func(error) bool

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep Sleeper

	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Attempts is the maximum number of calls the policy makes.
func (p Policy) Attempts() int {
	return len(p.Delays) + 1
}

// Do calls fn until it succeeds, fails with a non-retryable error, or every
// attempt has been used. Exhaustion is reported as *errors.RetryError
// wrapping the last failure.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 0; attempt < p.Attempts(); attempt++ {
		if attempt > 0 {
			delay := p.Delays[attempt-1]
			if p.OnRetry != nil {
				p.OnRetry(attempt, delay, lastErr)
			}
			logging.FromContext(ctx).Warn().
				Err(lastErr).
				Str("operation", p.Name).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying after failure")
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return zero, errors.WrapResource("retry", p.Name, "", errors.ErrCanceled)
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, errors.NewRetryError(p.Name, p.Attempts(), lastErr)
}

// SleepContext waits for d unless ctx is canceled first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.WrapResource("wait", "retry", "", errors.ErrCanceled)
	case <-t.C:
		return nil
	}
}
