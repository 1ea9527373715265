package config

import (
	"fmt"
	"log/slog"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Load reads ragstore.yaml from path, expands environment variables, merges
// the result over the built-in defaults and validates it. An empty path
// skips the file entirely and returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		user, err := loadYAML(path)
		if err != nil {
			return nil, err
		}
		// User values override defaults; unset fields keep the default.
		if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge configuration: %w", err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"path", path,
		"backend", cfg.Store.Backend,
		"database_id", cfg.Store.DatabaseID,
		"listen_addr", cfg.Server.ListenAddr)
	return cfg, nil
}

func loadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	data = ExpandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendMemory:
	case BackendPostgres, BackendMongoDB:
		if cfg.Store.Endpoint == "" {
			return &ValidationError{Field: "store.endpoint", Message: "required for backend " + cfg.Store.Backend}
		}
	default:
		return &ValidationError{Field: "store.backend", Message: "unknown backend " + cfg.Store.Backend}
	}

	if cfg.Store.DatabaseID == "" {
		return &ValidationError{Field: "store.database_id", Message: "required"}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: "unknown level " + cfg.Logging.Level}
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return &ValidationError{Field: "logging.format", Message: "unknown format " + cfg.Logging.Format}
	}

	return nil
}
