package retry

import (
	"context"
	"time"
)

// Policy describes how Do retries a failing operation. A zero Policy runs the
// operation exactly once.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	BaseDelay  time.Duration
	// MaxDelay caps the backoff; zero means uncapped.
	MaxDelay time.Duration
	// ShouldRetry classifies an error. Defaults to IsTransient.
	ShouldRetry func(err error) bool
	// OnRetry runs after the backoff wait and before the next attempt. attempt
	// is the 1-based number of the attempt that failed. Callers use it to
	// rebuild single-use inputs such as upload readers.
	OnRetry func(attempt int, err error)
	// Sleep overrides the backoff wait (tests).
	Sleep func(ctx context.Context, d time.Duration) error
}

// Operation is a unit of work that may be retried.
type Operation[T any] func(ctx context.Context) (T, error)

// Do runs op until it succeeds, returns a non-retryable error, or exhausts
// policy.MaxRetries. The last error is returned unchanged.
func Do[T any](ctx context.Context, op Operation[T], policy Policy) (T, error) {
	shouldRetry := policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if attempt >= policy.MaxRetries || ctx.Err() != nil || !shouldRetry(err) {
			return zero, err
		}
		if serr := sleep(ctx, Backoff(attempt, policy.BaseDelay, policy.MaxDelay)); serr != nil {
			return zero, serr
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, err)
		}
	}
}

// Backoff returns min(base * 2^attempt, max) for a 0-based attempt.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 0; i < attempt; i++ {
		if max > 0 && delay > max/2 {
			return max
		}
		if delay > time.Duration(1<<62)/2 {
			break
		}
		delay *= 2
	}
	if max > 0 && delay > max {
		return max
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
