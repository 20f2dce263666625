package llm

import (
	"context"
	"log/slog"
	"time"

	"cv-analyzer/internal/cache"
)

// CachedClient serves repeated prompts from a completion cache.
type CachedClient struct {
	inner Client
	cache cache.Cache
	model string
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedClient wraps inner. model is part of the cache key so switching
// models never returns a stale answer.
func NewCachedClient(inner Client, c cache.Cache, model string, ttl time.Duration, log *slog.Logger) *CachedClient {
	if log == nil {
		log = slog.Default()
	}
	return &CachedClient{inner: inner, cache: c, model: model, ttl: ttl, log: log}
}

func (c *CachedClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	key := cache.GenerateCacheKey(c.model, prompt, maxTokens)

	cached, err := c.cache.GetCompletion(ctx, key)
	if err != nil {
		c.log.Warn("completion cache lookup failed", "err", err)
	} else if cached != nil {
		c.log.Debug("completion cache hit", "model", c.model)
		return cached.Text, nil
	}

	text, err := c.inner.Generate(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}

	completion := &cache.Completion{Text: text, Model: c.model, CreatedAt: time.Now().UTC()}
	if err := c.cache.SetCompletion(ctx, key, completion, c.ttl); err != nil {
		c.log.Warn("completion cache store failed", "err", err)
	}
	return text, nil
}
