package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full runtime configuration, loaded from the environment.
// cmd entrypoints load a .env file first, so local runs need no exported
// variables.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   int    `envconfig:"PORT" default:"8080"`

	// StoreBackend selects the persistence layer: postgres or memory.
	// Memory keeps nothing across restarts and exists for local runs and
	// demos.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	DatabaseURL    string `envconfig:"DATABASE_URL"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`

	// RedisAddr enables the redis notifier when set; empty means events
	// are dropped.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	NotifyChannel string `envconfig:"NOTIFY_CHANNEL" default:"cafe.notifications"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"12h"`

	QuoteSweepInterval time.Duration `envconfig:"QUOTE_SWEEP_INTERVAL" default:"1h"`

	// Timezone anchors order dates and batch ages to the cafe's local
	// calendar day.
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Colombo"`
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.StoreBackend != "postgres" && cfg.StoreBackend != "memory" {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q, expected postgres or memory", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
	}

	return &cfg, nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
