package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Providers
	ESPNBaseURL    string        `envconfig:"ESPN_BASE_URL" default:"https://www.espn.com"`
	ESPNAPIBaseURL string        `envconfig:"ESPN_API_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"`
	NCAABaseURL    string        `envconfig:"NCAA_BASE_URL" default:"https://sdataprod.ncaa.com"`
	FetchTimeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"20s"`
	FetchRetries   int           `envconfig:"FETCH_RETRIES" default:"3"`
	FetchDelay     time.Duration `envconfig:"FETCH_DELAY" default:"1500ms"`

	// Storage
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"csv"` // csv or postgres
	DataRoot       string `envconfig:"DATA_ROOT" default:"data/raw/usa_ncaam"`

	// Database (postgres backend only)
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaam_v1"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaam_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (live update stream, optional)
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler   bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlySweepCron  string `envconfig:"NIGHTLY_SWEEP_CRON" default:"0 4 * * *"`
	SweepLookbackDays int    `envconfig:"SWEEP_LOOKBACK_DAYS" default:"3"`
	LivePollInterval  int    `envconfig:"LIVE_POLL_INTERVAL" default:"120"` // seconds

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables.
// It first attempts to load from a .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "csv", "postgres":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be csv or postgres, got %q", c.StorageBackend)
	}

	if c.StorageBackend == "postgres" && c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required for the postgres backend")
	}

	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error.
// Use this in main() where we want to fail fast.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
