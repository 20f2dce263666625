package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache stores model completions so identical prompts skip the remote call.
type Cache interface {
	// GetCompletion retrieves a cached completion by key.
	// Returns nil if not found.
	GetCompletion(ctx context.Context, key string) (*Completion, error)

	// SetCompletion stores a completion with TTL.
	SetCompletion(ctx context.Context, key string, completion *Completion, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Completion is a cached model answer.
type Completion struct {
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateCacheKey derives a stable key from everything that shapes the answer.
func GenerateCacheKey(model, prompt string, maxTokens int) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(maxTokens)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
