// Package config loads the service configuration from ragstore.yaml,
// expanding environment variables and layering user values over built-in
// defaults.
package config

import (
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/database"
)

// Backend names accepted in store.backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
)

// Config is the fully resolved service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is one of memory, postgres, mongodb.
	Backend  string `yaml:"backend"`
	Endpoint string `yaml:"endpoint"`
	// DatabaseID names the logical database within the backend.
	DatabaseID string `yaml:"database_id"`
	// TokenEnv names the environment variable holding the access token or
	// password. The credential itself never appears in YAML.
	TokenEnv           string        `yaml:"token_env"`
	DiagnosticsEnabled bool          `yaml:"diagnostics_enabled"`
	LatencyThreshold   time.Duration `yaml:"latency_threshold"`
	Retry              RetryConfig   `yaml:"retry"`
}

// RetryConfig mirrors the store client's retry policy knobs.
type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	FixedIntervalMS int `yaml:"fixed_interval_ms"`
	MaxWaitSeconds  int `yaml:"max_wait_seconds"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// DatabaseConfig converts the store section into the client's config type.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Endpoint:   c.Store.Endpoint,
		DatabaseID: c.Store.DatabaseID,
		Retry: &database.RetryOptions{
			MaxRetryAttemptCount:             c.Store.Retry.MaxAttempts,
			FixedRetryIntervalInMilliseconds: c.Store.Retry.FixedIntervalMS,
			MaxRetryWaitTimeInSeconds:        c.Store.Retry.MaxWaitSeconds,
		},
		DiagnosticsEnabled: c.Store.DiagnosticsEnabled,
		LatencyThreshold:   c.Store.LatencyThreshold,
	}
}
