package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ragstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "ragstore", cfg.Store.DatabaseID)
	assert.Equal(t, 3, cfg.Store.Retry.MaxAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMergesUserValuesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
store:
  backend: postgres
  endpoint: "postgres://localhost:5432/ragstore"
  retry:
    max_attempts: 5
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Store.Retry.MaxAttempts)
	// Unset fields keep defaults.
	assert.Equal(t, 30, cfg.Store.Retry.MaxWaitSeconds)
	assert.Equal(t, "ragstore", cfg.Store.DatabaseID)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_STORE_ENDPOINT", "mongodb://db.internal:27017")

	path := writeConfig(t, `
store:
  backend: mongodb
  endpoint: "{{.TEST_STORE_ENDPOINT}}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Store.Endpoint)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "store: [not: a: mapping")
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidYAML)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "unknown backend",
			yaml:  "store:\n  backend: cassandra\n",
			field: "store.backend",
		},
		{
			name:  "postgres requires endpoint",
			yaml:  "store:\n  backend: postgres\n",
			field: "store.endpoint",
		},
		{
			name:  "unknown log level",
			yaml:  "logging:\n  level: loud\n",
			field: "logging.level",
		},
		{
			name:  "unknown log format",
			yaml:  "logging:\n  format: xml\n",
			field: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDatabaseConfigConversion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	db := cfg.DatabaseConfig()
	assert.Equal(t, "ragstore", db.DatabaseID)
	require.NotNil(t, db.Retry)
	assert.Equal(t, 3, db.Retry.MaxRetryAttemptCount)
	assert.Equal(t, 1000, db.Retry.FixedRetryIntervalInMilliseconds)
}
