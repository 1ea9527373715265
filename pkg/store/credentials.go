package store

import (
	"context"
	"fmt"
	"os"
)

// TokenProvider supplies a bearer token scoped to the database resource.
// Backends consume the provider at connect time; the core never handles or
// stores long-lived secrets. Managed Postgres and MongoDB deployments
// accept such access tokens in place of passwords.
type TokenProvider interface {
	Token(ctx context.Context, scope string) (string, error)
}

// StaticTokenProvider returns a fixed token. Intended for tests and local
// development.
type StaticTokenProvider string

func (p StaticTokenProvider) Token(context.Context, string) (string, error) {
	return string(p), nil
}

// EnvTokenProvider reads the token from an environment variable on every
// call, picking up rotation performed by an external agent.
type EnvTokenProvider string

func (p EnvTokenProvider) Token(context.Context, string) (string, error) {
	v := os.Getenv(string(p))
	if v == "" {
		return "", fmt.Errorf("credential env var %s is not set", string(p))
	}
	return v, nil
}
