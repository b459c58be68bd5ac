// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration shared by the server and maintenance commands.
type Config struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL        string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns         int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns         int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"30s"`
	// MigrateOnStart applies pending schema migrations before serving
	MigrateOnStart bool `envconfig:"MIGRATE_ON_START" default:"true"`

	// RedisAddr enables the numbering scope lock when set
	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	NumberingLockTTL time.Duration `envconfig:"NUMBERING_LOCK_TTL" default:"5s"`
	NumberingRetries int           `envconfig:"NUMBERING_RETRIES" default:"3"`

	RelinkBatchSize        int    `envconfig:"RELINK_BATCH_SIZE" default:"1000"`
	PendingRecipient       string `envconfig:"PENDING_RECIPIENT" default:"Ceva 1"`
	PendingDefaultCategory string `envconfig:"PENDING_DEFAULT_CATEGORY" default:"clothing"`

	ReadTimeout     time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL must be set")
	}
	if cfg.NumberingRetries < 1 {
		return nil, errors.New("NUMBERING_RETRIES must be at least 1")
	}
	if cfg.RelinkBatchSize < 1 {
		return nil, errors.New("RELINK_BATCH_SIZE must be at least 1")
	}
	return &cfg, nil
}

// IsDevelopment reports whether logs should be human-readable.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
