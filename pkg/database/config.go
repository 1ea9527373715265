package database

import (
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/retry"
)

// RetryOptions mirrors the managed-SDK retry knobs recognized by the
// platform configuration.
type RetryOptions struct {
	MaxRetryAttemptCount             int `yaml:"maxRetryAttemptCount" json:"maxRetryAttemptCount"`
	FixedRetryIntervalInMilliseconds int `yaml:"fixedRetryIntervalInMilliseconds" json:"fixedRetryIntervalInMilliseconds"`
	MaxRetryWaitTimeInSeconds        int `yaml:"maxRetryWaitTimeInSeconds" json:"maxRetryWaitTimeInSeconds"`
}

// Config holds the store connection configuration. No other options are
// recognized.
type Config struct {
	Endpoint           string        `yaml:"endpoint" json:"endpoint"`
	DatabaseID         string        `yaml:"databaseId" json:"databaseId"`
	Retry              *RetryOptions `yaml:"retryOptions,omitempty" json:"retryOptions,omitempty"`
	DiagnosticsEnabled bool          `yaml:"diagnosticsEnabled" json:"diagnosticsEnabled"`

	// LatencyThreshold triggers a diagnostic event when a health probe
	// exceeds it and diagnostics are enabled.
	LatencyThreshold time.Duration `yaml:"latencyThreshold" json:"-"`
}

// retryOptions translates the configured knobs into executor options.
func (c Config) retryOptions() retry.Options {
	opts := retry.Options{}
	if c.Retry != nil {
		opts.MaxAttempts = c.Retry.MaxRetryAttemptCount
		opts.BaseDelay = time.Duration(c.Retry.FixedRetryIntervalInMilliseconds) * time.Millisecond
		opts.MaxDelay = time.Duration(c.Retry.MaxRetryWaitTimeInSeconds) * time.Second
	}
	return opts
}
