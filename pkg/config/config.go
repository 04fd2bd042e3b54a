package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int
	// IdentityProvider prefixes legacy document keys ({provider}-{userId}.json).
	IdentityProvider string
	LogMode          string
	InternalToken    string

	LLM      LLMConfig
	Jobs     JobsConfig
	DocStore DocStoreConfig
}

type LLMConfig struct {
	Provider           string
	OpenRouterAPIKey   string
	OpenRouterBase     string
	OpenRouterModel    string
	OpenRouterAppTitle string
	OpenRouterReferer  string
	AnthropicAPIKey    string
	AnthropicModel     string
	MaxRetries         int
	RetryBase          time.Duration
	RatePerMinute      int
}

type JobsConfig struct {
	// DispatchMode is "queue" (durable Postgres table + worker) or "inline" (detached goroutine).
	DispatchMode      string
	Concurrency       int
	PollInterval      time.Duration
	MaxAttempts       int
	VisibilityTimeout time.Duration
	StaleAfter        time.Duration
	SweepInterval     time.Duration
}

type DocStoreConfig struct {
	Backend            string
	RedisURL           string
	GCSBucket          string
	GCSCredentialsFile string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:        getEnv("JWT_ISSUER", "career-service"),
		JWTTTLMinutes:    getEnvInt("JWT_TTL_MINUTES", 60),
		IdentityProvider: getEnv("IDENTITY_PROVIDER", "local"),
		LogMode:          getEnv("LOG_MODE", "dev"),
		InternalToken:    os.Getenv("INTERNAL_TOKEN"),
		LLM: LLMConfig{
			Provider:           strings.ToLower(getEnv("LLM_PROVIDER", "openrouter")),
			OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterBase:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			OpenRouterModel:    getEnv("OPENROUTER_MODEL", "qwen/qwen2.5-32b-instruct"),
			OpenRouterAppTitle: getEnv("OPENROUTER_APP_TITLE", "career-service"),
			OpenRouterReferer:  os.Getenv("OPENROUTER_REFERER"),
			AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-3-7-sonnet-latest"),
			MaxRetries:         getEnvInt("LLM_MAX_RETRIES", 3),
			RetryBase:          getEnvDuration("LLM_RETRY_BASE", 500*time.Millisecond),
			RatePerMinute:      getEnvInt("LLM_RATE_PER_MINUTE", 60),
		},
		Jobs: JobsConfig{
			DispatchMode:      strings.ToLower(getEnv("DISPATCH_MODE", "queue")),
			Concurrency:       getEnvInt("WORKER_CONCURRENCY", 4),
			PollInterval:      getEnvDuration("WORKER_POLL_INTERVAL", time.Second),
			MaxAttempts:       getEnvInt("JOB_MAX_ATTEMPTS", 3),
			VisibilityTimeout: getEnvDuration("JOB_VISIBILITY_TIMEOUT", 5*time.Minute),
			StaleAfter:        getEnvDuration("PIPELINE_STALE_AFTER", 10*time.Minute),
			SweepInterval:     getEnvDuration("SWEEP_INTERVAL", time.Minute),
		},
		DocStore: DocStoreConfig{
			Backend:            strings.ToLower(getEnv("DOCSTORE_BACKEND", "memory")),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
			GCSBucket:          os.Getenv("GCS_BUCKET"),
			GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
