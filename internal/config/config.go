package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"7860"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM
	LLMProvider      string        `env:"LLM_PROVIDER" envDefault:"huggingface"` // "huggingface", "openai" or "gemini"
	HFToken          string        `env:"HF_TOKEN"`
	OpenAIKey        string        `env:"OPENAI_API_KEY"`
	GoogleAPIKey     string        `env:"GOOGLE_API_KEY"`
	LLMBaseURL       string        `env:"LLM_BASE_URL"`
	LLMModel         string        `env:"LLM_MODEL"` // empty picks the provider default
	LLMTimeout       time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	LLMRetryAttempts int           `env:"LLM_RETRY_ATTEMPTS" envDefault:"1"`

	// Output bounds per workflow
	AnalysisMaxTokens int `env:"ANALYSIS_MAX_TOKENS" envDefault:"512"`
	OptimizeMaxTokens int `env:"OPTIMIZE_MAX_TOKENS" envDefault:"1024"`

	// Completion cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Report storage
	ReportStorage string `env:"REPORT_STORAGE" envDefault:"local"` // "local" or "s3"
	ReportDir     string `env:"REPORT_DIR" envDefault:"reports"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3Region      string `env:"S3_REGION" envDefault:"auto"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`

	// Run history
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"sqlite"` // "sqlite", "postgres" or "none"
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"cvanalyzer.db"`
	DBURL         string `env:"DB_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
