package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-analyzer/internal/config"
	"cv-analyzer/internal/llm"
	"cv-analyzer/internal/storage"
	"cv-analyzer/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		LogLevel:          "error",
		LLMProvider:       "huggingface",
		LLMTimeout:        time.Second,
		LLMRetryAttempts:  1,
		AnalysisMaxTokens: 512,
		OptimizeMaxTokens: 1024,
		CacheProvider:     "none",
		CacheTTL:          60,
		ReportStorage:     "local",
		ReportDir:         filepath.Join(dir, "reports"),
		StoreProvider:     "sqlite",
		SQLitePath:        filepath.Join(dir, "runs.db"),
	}
}

func TestBuildWithConfigDefaults(t *testing.T) {
	deps, err := BuildWithConfig(context.Background(), testConfig(t), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })

	assert.NotNil(t, deps.Log)
	assert.IsType(t, &llm.RetryingClient{}, deps.LLM)
	assert.IsType(t, &storage.LocalStore{}, deps.Storage)
	assert.IsType(t, &store.SQLiteStore{}, deps.Runs)
	assert.NotNil(t, deps.Reports)
	assert.NotNil(t, deps.Workflows)
}

func TestBuildWithConfigProviders(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "openai without key still builds",
			mutate: func(c *config.Config) { c.LLMProvider = "openai" },
		},
		{
			name: "gemini with key",
			mutate: func(c *config.Config) {
				c.LLMProvider = "gemini"
				c.GoogleAPIKey = "test-key"
			},
		},
		{
			name:   "history disabled",
			mutate: func(c *config.Config) { c.StoreProvider = "none" },
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *config.Config) { c.LLMProvider = "ollama" },
			wantErr: "invalid LLM_PROVIDER",
		},
		{
			name:    "unknown cache provider",
			mutate:  func(c *config.Config) { c.CacheProvider = "memcached" },
			wantErr: "invalid CACHE_PROVIDER",
		},
		{
			name:    "unknown report storage",
			mutate:  func(c *config.Config) { c.ReportStorage = "ftp" },
			wantErr: "invalid REPORT_STORAGE",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *config.Config) { c.ReportStorage = "s3" },
			wantErr: "bucket required",
		},
		{
			name:    "postgres without url",
			mutate:  func(c *config.Config) { c.StoreProvider = "postgres" },
			wantErr: "DB_URL is required",
		},
		{
			name:    "unknown run store",
			mutate:  func(c *config.Config) { c.StoreProvider = "mongo" },
			wantErr: "invalid STORE_PROVIDER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)

			deps, err := BuildWithConfig(context.Background(), cfg, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, deps.Close())
		})
	}
}
