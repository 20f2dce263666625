package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cv-analyzer/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedClientGenerate(t *testing.T) {
	ctx := context.Background()
	key := cache.GenerateCacheKey("model-a", "prompt", 512)

	tests := []struct {
		name    string
		setup   func(*cache.MockCache, *MockClient)
		want    string
		wantErr bool
	}{
		{
			name: "hit skips inference",
			setup: func(c *cache.MockCache, inner *MockClient) {
				c.On("GetCompletion", ctx, key).Return(&cache.Completion{Text: "cached"}, nil)
			},
			want: "cached",
		},
		{
			name: "miss calls inference and stores",
			setup: func(c *cache.MockCache, inner *MockClient) {
				c.On("GetCompletion", ctx, key).Return(nil, nil)
				inner.On("Generate", ctx, "prompt", 512).Return("fresh", nil)
				c.On("SetCompletion", ctx, key, mock.MatchedBy(func(cp *cache.Completion) bool {
					return cp.Text == "fresh" && cp.Model == "model-a"
				}), time.Hour).Return(nil)
			},
			want: "fresh",
		},
		{
			name: "cache failures are ignored",
			setup: func(c *cache.MockCache, inner *MockClient) {
				c.On("GetCompletion", ctx, key).Return(nil, errors.New("redis down"))
				inner.On("Generate", ctx, "prompt", 512).Return("fresh", nil)
				c.On("SetCompletion", ctx, key, mock.Anything, time.Hour).Return(errors.New("redis down"))
			},
			want: "fresh",
		},
		{
			name: "inference errors are not cached",
			setup: func(c *cache.MockCache, inner *MockClient) {
				c.On("GetCompletion", ctx, key).Return(nil, nil)
				inner.On("Generate", ctx, "prompt", 512).Return("", errors.New("401"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(cache.MockCache)
			inner := new(MockClient)
			tt.setup(c, inner)

			client := NewCachedClient(inner, c, "model-a", time.Hour, discardLogger())
			got, err := client.Generate(ctx, "prompt", 512)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			c.AssertExpectations(t)
			inner.AssertExpectations(t)
		})
	}
}

func TestRetryingClientGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("single attempt by default", func(t *testing.T) {
		inner := new(MockClient)
		inner.On("Generate", ctx, "prompt", 16).Return("", errors.New("boom")).Once()

		_, err := NewRetryingClient(inner, 0, time.Millisecond, discardLogger()).Generate(ctx, "prompt", 16)

		assert.EqualError(t, err, "boom")
		inner.AssertNumberOfCalls(t, "Generate", 1)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		inner := new(MockClient)
		inner.On("Generate", ctx, "prompt", 16).Return("", errors.New("connection reset")).Once()
		inner.On("Generate", ctx, "prompt", 16).Return("ok", nil).Once()

		got, err := NewRetryingClient(inner, 3, time.Millisecond, discardLogger()).Generate(ctx, "prompt", 16)

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		inner.AssertNumberOfCalls(t, "Generate", 2)
	})

	t.Run("does not retry cancellation", func(t *testing.T) {
		inner := new(MockClient)
		inner.On("Generate", ctx, "prompt", 16).Return("", context.Canceled).Once()

		_, err := NewRetryingClient(inner, 3, time.Millisecond, discardLogger()).Generate(ctx, "prompt", 16)

		assert.ErrorIs(t, err, context.Canceled)
		inner.AssertNumberOfCalls(t, "Generate", 1)
	})
	geminiTests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{
			name:      "gemini auth failure is permanent",
			status:    http.StatusUnauthorized,
			body:      `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`,
			wantCalls: 1,
		},
		{
			name:      "gemini unknown model is permanent",
			status:    http.StatusNotFound,
			body:      `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`,
			wantCalls: 1,
		},
		{
			name:      "gemini overload is retried",
			status:    http.StatusServiceUnavailable,
			body:      `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`,
			wantCalls: 3,
		},
	}

	for _, tt := range geminiTests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewGeminiClient(ctx, "test-key", srv.URL, "", time.Second)
			require.NoError(t, err)

			_, err = NewRetryingClient(g, 3, time.Millisecond, discardLogger()).Generate(ctx, "prompt", 16)

			require.Error(t, err)
			assert.Equal(t, tt.wantCalls, hits.Load())
		})
	}
}

func TestIsRetryableGeminiErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unauthenticated", genai.APIError{Code: 401}, false},
		{"forbidden", genai.APIError{Code: 403}, false},
		{"rate limited", genai.APIError{Code: 429}, true},
		{"server error", genai.APIError{Code: 500}, true},
		{"wrapped", fmt.Errorf("gemini: %w", genai.APIError{Code: 400}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
