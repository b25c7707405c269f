package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for friction-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional, used for the run lock)
	Redis RedisConfig `yaml:"redis"`

	// Classification service configuration
	Classifier ClassifierConfig `yaml:"classifier"`

	// CRM (case store) configuration
	CRM CRMConfig `yaml:"crm"`

	// Pipeline caps and scoring knobs
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Credential encryption key for integration secrets (CRM refresh tokens).
	// Must be a 32-byte key, base64 encoded. Generate with: openssl rand -base64 32
	// Server will fail to start if this is not set.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML

	// ThemesPath points at the theme reference enumeration seed file.
	ThemesPath string `yaml:"themes_path" env:"THEMES_PATH" env-default:"themes.yaml"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"friction"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"friction_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// RedisConfig holds Redis connection configuration. Host may be empty, in
// which case the run lock degrades to a no-op (single scheduled job).
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ClassifierConfig holds the text-analysis service configuration.
type ClassifierConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"CLASSIFIER_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"CLASSIFIER_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"CLASSIFIER_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"CLASSIFIER_API_KEY"` // Secret - not in YAML
}

// CRMConfig holds case store connection settings. The OAuth refresh token
// itself lives encrypted in the integration_credentials table, not here.
type CRMConfig struct {
	TokenURL     string `yaml:"token_url" env:"CRM_TOKEN_URL" env-default:""`
	ClientID     string `yaml:"client_id" env:"CRM_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"CRM_CLIENT_SECRET"` // Secret - not in YAML
	APIVersion   string `yaml:"api_version" env:"CRM_API_VERSION" env-default:"v59.0"`
}

// PipelineConfig carries every cap and knob of the analysis pipeline as an
// explicit value so tests can shrink them without touching global state.
type PipelineConfig struct {
	// RunAccountCap is the hard per-run budget: once this many accounts
	// have been fully processed the run stops entirely.
	RunAccountCap int `yaml:"run_account_cap" env:"RUN_ACCOUNT_CAP" env-default:"50"`

	// CaseFetchLimit bounds how many case records are fetched per account.
	CaseFetchLimit int `yaml:"case_fetch_limit" env:"CASE_FETCH_LIMIT" env-default:"2000"`

	// CaseWindowDays is the fetch window for case creation dates.
	CaseWindowDays int `yaml:"case_window_days" env:"CASE_WINDOW_DAYS" env-default:"90"`

	// TextTruncationLimit caps classification input size in characters.
	TextTruncationLimit int `yaml:"text_truncation_limit" env:"TEXT_TRUNCATION_LIMIT" env-default:"2000"`

	// ClassifyDelay is the fixed pause between successive classification
	// calls within one account's batch (external rate-limit courtesy).
	ClassifyDelay time.Duration `yaml:"classify_delay" env:"CLASSIFY_DELAY" env-default:"200ms"`

	// Retry schedule for transient classification failures.
	RetryMaxAttempts  int           `yaml:"retry_max_attempts" env:"RETRY_MAX_ATTEMPTS" env-default:"3"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay" env:"RETRY_INITIAL_DELAY" env-default:"1s"`
	RetryMaxDelay     time.Duration `yaml:"retry_max_delay" env:"RETRY_MAX_DELAY" env-default:"30s"`

	// AlertTTL is how long alerts live before housekeeping purges them.
	AlertTTL time.Duration `yaml:"alert_ttl" env:"ALERT_TTL" env-default:"168h"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if cfg.CredentialsKey == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be set")
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns a PostgreSQL connection URL suitable for pgxpool.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}
