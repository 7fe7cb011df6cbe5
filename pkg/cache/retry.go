package cache

import (
	"context"
	"time"
)

const (
	// connectAttempts bounds how often a backend connection is tried.
	connectAttempts = 3

	// connectDelay is the wait before the second attempt; it doubles after
	// every failure.
	connectDelay = 500 * time.Millisecond
)

// retry runs fn until it succeeds, attempts are exhausted or ctx is done.
// Returns the last error of fn, or ctx.Err() if cancelled while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
