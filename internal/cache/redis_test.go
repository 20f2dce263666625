package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisCache connects to TEST_REDIS_ADDR, skipping when it is unset or
// unreachable.
func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping")
	}
	c, err := NewRedisCache(addr, os.Getenv("TEST_REDIS_PASSWORD"))
	if err != nil {
		t.Skipf("redis unreachable at %s: %v", addr, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCacheMiss(t *testing.T) {
	c := newTestRedisCache(t)

	got, err := c.GetCompletion(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheSetAndGet(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	key := GenerateCacheKey("m", uuid.NewString(), 512)
	t.Cleanup(func() { c.client.Del(context.Background(), cacheKeyPrefix+key) })

	want := &Completion{
		Text:      "--- Analysis Report ---\nScore: 7/10",
		Model:     "mistralai/Mistral-7B-Instruct-v0.3",
		CreatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, c.SetCompletion(ctx, key, want, time.Minute))

	got, err := c.GetCompletion(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Text, got.Text)
	assert.Equal(t, want.Model, got.Model)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	ttl, err := c.client.TTL(ctx, cacheKeyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	key := uuid.NewString()
	t.Cleanup(func() { c.client.Del(context.Background(), cacheKeyPrefix+key) })

	require.NoError(t, c.client.Set(ctx, cacheKeyPrefix+key, "not json", time.Minute).Err())

	_, err := c.GetCompletion(ctx, key)
	assert.Error(t, err)
}
