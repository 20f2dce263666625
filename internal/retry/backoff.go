package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxBackoff caps the delay between attempts.
const MaxBackoff = 30 * time.Second

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt, capped at MaxBackoff.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if base <= 0 {
		return 0
	}
	if base >= MaxBackoff {
		return MaxBackoff
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= MaxBackoff {
			return MaxBackoff
		}
	}
	return delay
}

// Do calls fn up to attempts times, sleeping ExponentialBackoff(attempt, base)
// between calls. It stops early when ctx is done, when fn succeeds, or when
// retryable reports false for the returned error. A nil retryable retries
// every error except context cancellation.
func Do[T any](ctx context.Context, attempts int, base time.Duration, retryable func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if retryable != nil && !retryable(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(ExponentialBackoff(attempt, base)):
		}
	}
	if attempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
