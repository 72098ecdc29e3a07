package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for exeloka-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (passwords, API
// keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional retrieval cache)
	Redis RedisConfig `yaml:"redis"`

	// Completion provider configuration
	Provider ProviderConfig `yaml:"provider"`

	// Quick scorer configuration
	Scorer ScorerConfig `yaml:"scorer"`

	// MigrationsPath is the directory holding SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// PromptTemplatesPath optionally points at a YAML file with versioned
	// prompt template overrides. Empty means built-in defaults.
	PromptTemplatesPath string `yaml:"prompt_templates_path" env:"PROMPT_TEMPLATES_PATH" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"exeloka"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"exeloka_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds optional Redis configuration for the retrieval cache.
// An empty host disables caching.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ProviderConfig holds completion provider settings. The API key is the
// availability switch: when it is empty the engine runs in degraded mode and
// never attempts a provider call.
type ProviderConfig struct {
	// Kind selects the provider client: "openai" (OpenAI-compatible,
	// including OpenRouter) or "anthropic".
	Kind string `yaml:"kind" env:"PROVIDER_KIND" env-default:"openai"`

	// BaseURL is the provider endpoint base URL.
	BaseURL string `yaml:"base_url" env:"PROVIDER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`

	// APIKey is the bearer credential. Secret - env only.
	APIKey string `yaml:"-" env:"PROVIDER_API_KEY"`

	// Per-task model overrides. Empty values fall back to the built-in
	// per-task table.
	CulturalAnalysisModel   string `yaml:"cultural_analysis_model" env:"MODEL_CULTURAL_ANALYSIS" env-default:""`
	RecommendationModel     string `yaml:"recommendation_model" env:"MODEL_RECOMMENDATION" env-default:""`
	ContentExtractionModel  string `yaml:"content_extraction_model" env:"MODEL_CONTENT_EXTRACTION" env-default:""`
	FeedbackAnalysisModel   string `yaml:"feedback_analysis_model" env:"MODEL_FEEDBACK_ANALYSIS" env-default:""`
	RequestTimeoutSeconds   int    `yaml:"request_timeout_seconds" env:"PROVIDER_TIMEOUT_SECONDS" env-default:"60"`
	RetryMaxAttempts        int    `yaml:"retry_max_attempts" env:"PROVIDER_RETRY_MAX_ATTEMPTS" env-default:"3"`
	RetryBackoffMillis      int    `yaml:"retry_backoff_millis" env:"PROVIDER_RETRY_BACKOFF_MILLIS" env-default:"1000"`
	RetryBackoffMultiplier  float64 `yaml:"retry_backoff_multiplier" env:"PROVIDER_RETRY_BACKOFF_MULTIPLIER" env-default:"2"`
}

// IsAvailable returns true if a provider credential is configured.
func (c *ProviderConfig) IsAvailable() bool {
	return c.APIKey != ""
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *ProviderConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ScorerConfig holds quick scorer settings.
type ScorerConfig struct {
	// SnapshotPath is the weight snapshot artifact. A missing file puts the
	// scorer in cold-start mode (randomized weights, logged at startup).
	SnapshotPath string `yaml:"snapshot_path" env:"SCORER_SNAPSHOT_PATH" env-default:"models/quick_analysis_weights.json"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time. When no
// config.yaml exists, configuration comes from environment variables alone.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider.Kind {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("invalid provider kind %q: must be openai or anthropic", c.Provider.Kind)
	}
	if c.Provider.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("provider request timeout must be positive")
	}
	if c.Provider.RetryMaxAttempts < 1 {
		return fmt.Errorf("provider retry max attempts must be at least 1")
	}
	return nil
}
