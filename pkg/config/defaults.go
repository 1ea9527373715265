package config

import "time"

// DefaultConfig returns the built-in configuration. User YAML values are
// merged on top; anything left unset keeps these values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend:          BackendMemory,
			DatabaseID:       "ragstore",
			TokenEnv:         "STORE_TOKEN",
			LatencyThreshold: 500 * time.Millisecond,
			Retry: RetryConfig{
				MaxAttempts:     3,
				FixedIntervalMS: 1000,
				MaxWaitSeconds:  30,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
