package synopsis

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff is an exponential retry policy with jitter.
type Backoff struct {
	Attempts int
	Base     time.Duration
	Cap      time.Duration
}

// DefaultBackoff is the policy used when none is configured.
var DefaultBackoff = Backoff{Attempts: 4, Base: 500 * time.Millisecond, Cap: 8 * time.Second}

func (b Backoff) withDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Base <= 0 {
		b.Base = DefaultBackoff.Base
	}
	if b.Cap < b.Base {
		b.Cap = b.Base
	}
	return b
}

// delay returns the wait before retry number n (1-based): half of the capped
// exponential step plus a random share of the other half.
func (b Backoff) delay(n int) time.Duration {
	d := b.Base
	for i := 1; i < n && d < b.Cap; i++ {
		d *= 2
	}
	if d > b.Cap {
		d = b.Cap
	}
	half := d / 2
	return half + rand.N(half+1) //nolint:gosec // jitter only
}

// retry runs op until it succeeds, returns a non-retryable error or the
// attempts run out. Waits stop early when ctx is done. onRetry is called
// before every wait.
func (b Backoff) retry(ctx context.Context, op func(context.Context) error, retryable func(error) bool, onRetry func(attempt int, err error)) error {
	var lastErr error
	for attempt := 1; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil || !retryable(lastErr) || attempt == b.Attempts {
			return lastErr
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		timer := time.NewTimer(b.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
