package orchestrator

import (
	"context"
	"time"
)

// retryPolicy bounds attempts with exponential backoff.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
}

// runWithRetry runs op up to policy.attempts times. Only errors accepted by
// the retryable predicate are retried; anything else fails after the first
// attempt. Backoff doubles per retry and is cut short by context
// cancellation.
func runWithRetry(ctx context.Context, policy retryPolicy, retryable func(error) bool, op func(context.Context) (string, error)) (string, error) {
	attempts := policy.attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
		if attempt == attempts-1 {
			break
		}

		delay := policy.backoff << attempt
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}
