package llm

import (
	"context"
	"log/slog"
	"time"

	"cv-analyzer/internal/retry"
)

// RetryingClient retries transient inference failures with exponential backoff.
type RetryingClient struct {
	inner    Client
	attempts int
	base     time.Duration
	log      *slog.Logger
}

// NewRetryingClient wraps inner. attempts below 2 means a single call.
func NewRetryingClient(inner Client, attempts int, base time.Duration, log *slog.Logger) *RetryingClient {
	if attempts < 1 {
		attempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetryingClient{inner: inner, attempts: attempts, base: base, log: log}
}

func (c *RetryingClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	attempt := 0
	return retry.Do(ctx, c.attempts, c.base, IsRetryable, func(ctx context.Context) (string, error) {
		attempt++
		text, err := c.inner.Generate(ctx, prompt, maxTokens)
		if err != nil && attempt < c.attempts {
			c.log.Warn("inference attempt failed", "attempt", attempt, "max_attempts", c.attempts, "err", err)
		}
		return text, err
	})
}
