package embeddings

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds retries of transient service failures.
	DefaultMaxAttempts = 3

	// baseBackoff is the backoff before the first retry; it doubles per
	// attempt (500ms, 1s, 2s, ...).
	baseBackoff = 500 * time.Millisecond
)

// Backoff returns the exponential delay before retry number attempt
// (0-based).
func Backoff(attempt int) time.Duration {
	return baseBackoff << attempt
}

// SleepBackoff waits out the backoff for the given attempt, returning early
// with the context error if ctx is cancelled.
func SleepBackoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(Backoff(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
