package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"

	"cv-analyzer/internal/cache"
	"cv-analyzer/internal/config"
	"cv-analyzer/internal/llm"
	"cv-analyzer/internal/logger"
	"cv-analyzer/internal/report"
	"cv-analyzer/internal/storage"
	"cv-analyzer/internal/store"
	"cv-analyzer/internal/workflow"
)

const retryBaseDelay = 500 * time.Millisecond

// Deps bundles common runtime dependencies for the server and the CLI.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	LLM       llm.Client
	Cache     cache.Cache
	Storage   storage.Store
	Reports   *report.Service
	Runs      store.Store
	Workflows *workflow.Service
}

// Build loads env, config, and shared components, logging to logOut. A missing
// .env file is not an error.
func Build(ctx context.Context, logOut io.Writer) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return BuildWithConfig(ctx, config.Load(), logOut)
}

// BuildWithConfig wires every component from cfg.
func BuildWithConfig(ctx context.Context, cfg config.Config, logOut io.Writer) (Deps, error) {
	log := logger.NewWriter(logOut, cfg.LogLevel)

	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	llmClient, err := buildLLM(ctx, cfg, c, log)
	if err != nil {
		c.Close()
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	st, err := buildStorage(ctx, cfg, log)
	if err != nil {
		c.Close()
		return Deps{}, fmt.Errorf("failed to initialize report storage: %w", err)
	}
	runs, err := buildRunStore(cfg, log)
	if err != nil {
		c.Close()
		return Deps{}, fmt.Errorf("failed to initialize run store: %w", err)
	}

	reports := report.NewService(report.NewRenderer(), st)
	workflows := workflow.NewService(llmClient, reports, runs, workflow.Options{
		AnalysisMaxTokens: cfg.AnalysisMaxTokens,
		OptimizeMaxTokens: cfg.OptimizeMaxTokens,
	}, log)

	return Deps{
		Config:    cfg,
		Log:       log,
		LLM:       llmClient,
		Cache:     c,
		Storage:   st,
		Reports:   reports,
		Runs:      runs,
		Workflows: workflows,
	}, nil
}

// Close releases the cache and run store connections.
func (d Deps) Close() error {
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.Runs != nil {
		errs = append(errs, d.Runs.Close())
	}
	return errors.Join(errs...)
}

type modelClient interface {
	llm.Client
	Model() string
}

func buildLLM(ctx context.Context, cfg config.Config, c cache.Cache, log *slog.Logger) (llm.Client, error) {
	var base modelClient
	switch cfg.LLMProvider {
	case "huggingface", "":
		if cfg.HFToken == "" {
			log.Warn("HF_TOKEN is not set; inference requests will be rejected by the endpoint")
		}
		base = llm.NewHuggingFaceClient(cfg.HFToken, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout)
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Warn("OPENAI_API_KEY is not set; inference requests will be rejected by the endpoint")
		}
		base = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.LLMBaseURL, openai.ChatModel(cfg.LLMModel), cfg.LLMTimeout)
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		base = client
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: huggingface, openai, gemini)", cfg.LLMProvider)
	}
	log.Info("using LLM client", "provider", cfg.LLMProvider, "model", base.Model(), "timeout", cfg.LLMTimeout)

	var client llm.Client = llm.NewRetryingClient(base, cfg.LLMRetryAttempts, retryBaseDelay, log)
	if _, noop := c.(*cache.NoOpCache); !noop {
		client = llm.NewCachedClient(client, c, base.Model(), time.Duration(cfg.CacheTTL)*time.Second, log)
	}
	return client, nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis completion cache", "addr", cfg.RedisAddr, "ttl_seconds", cfg.CacheTTL)
		return c, nil
	case "none", "":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.Store, error) {
	switch cfg.ReportStorage {
	case "local", "":
		st, err := storage.NewLocalStore(cfg.ReportDir)
		if err != nil {
			return nil, err
		}
		log.Info("storing reports on disk", "dir", cfg.ReportDir)
		return st, nil
	case "s3":
		st, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		log.Info("storing reports in bucket", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return st, nil
	default:
		return nil, fmt.Errorf("invalid REPORT_STORAGE: %s (valid options: local, s3)", cfg.ReportStorage)
	}
}

func buildRunStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "sqlite", "":
		db, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("using SQLite run store", "path", cfg.SQLitePath)
		return db, nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres run store")
		return db, nil
	case "none":
		log.Info("run history disabled")
		return store.NewNopStore(), nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: sqlite, postgres, none)", cfg.StoreProvider)
	}
}
