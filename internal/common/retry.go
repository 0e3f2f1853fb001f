package common

import (
	"context"
	"time"
)

// RetryPolicy describes how an upstream call is retried: how many attempts,
// how long to wait between them, and which errors are permanent and must not
// be retried at all.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Permanent   func(err error) bool
}

// ExponentialBackoff returns a backoff function doubling from base:
// base, 2*base, 4*base, ...
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}

// NoBackoff returns a zero-delay backoff function, used in tests.
func NoBackoff() func(int) time.Duration {
	return func(int) time.Duration { return 0 }
}

// DefaultRetryPolicy is 3 attempts with exponential backoff from 1s.
// Permanent errors are never retried; set the predicate per client.
func DefaultRetryPolicy(permanent func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Permanent:   permanent,
	}
}

// Do runs op until it succeeds, a permanent error occurs, the attempt budget
// is exhausted, or ctx is cancelled. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			var delay time.Duration
			if p.Backoff != nil {
				delay = p.Backoff(attempt - 1)
			}
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			} else if err := ctx.Err(); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Permanent != nil && p.Permanent(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
