package fetch

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy wraps transfer attempts with bounded retries and a fixed
// inter-attempt delay. Terminal errors stop the loop immediately.
type RetryPolicy struct {
	// Retries is the number of attempts beyond the first.
	Retries int

	// Delay is the fixed wait between attempts.
	Delay time.Duration

	// Sleep waits for d or until ctx is done. Injected so tests run
	// without wall-clock delays. Default: time.After based.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do runs fn up to Retries+1 times. On exhaustion the returned error wraps
// the last underlying failure so callers can still see the root cause.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, p.Delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("after %d attempts: %w", p.Retries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
