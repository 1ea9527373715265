package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrInvalidYAML indicates the configuration file failed to parse.
	ErrInvalidYAML = errors.New("invalid YAML")
)

// ValidationError reports a bad configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}
