package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ragstore/pkg/store/memory"
)

func testConfig() Config {
	return Config{
		Endpoint:         "localhost",
		DatabaseID:       "ragstore-test",
		LatencyThreshold: time.Second,
	}
}

func TestNewClient_Validation(t *testing.T) {
	backend := memory.New()

	_, err := NewClient(Config{DatabaseID: "db"}, backend)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(Config{Endpoint: "localhost"}, backend)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(testConfig(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	client, err := NewClient(testConfig(), backend)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestContainer_CachedHandle(t *testing.T) {
	client, err := NewClient(testConfig(), memory.New())
	require.NoError(t, err)

	first := client.Container(ContainerProjects)
	second := client.Container(ContainerProjects)
	assert.Same(t, first, second)
	assert.Equal(t, ContainerProjects, first.Name())

	other := client.Container(ContainerDocuments)
	assert.NotSame(t, first, other)
}

func TestRetryOptions_FromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Retry = &RetryOptions{
		MaxRetryAttemptCount:             5,
		FixedRetryIntervalInMilliseconds: 250,
		MaxRetryWaitTimeInSeconds:        10,
	}
	client, err := NewClient(cfg, memory.New())
	require.NoError(t, err)

	opts := client.RetryOptions()
	assert.Equal(t, 5, opts.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, opts.BaseDelay)
	assert.Equal(t, 10*time.Second, opts.MaxDelay)
}

func TestHealth_Healthy(t *testing.T) {
	client, err := NewClient(testConfig(), memory.New())
	require.NoError(t, err)

	status := client.Health(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Len(t, status.Containers, len(KnownContainers))
	for name, ch := range status.Containers {
		assert.Equal(t, StatusHealthy, ch.Status, name)
	}
}

func TestHealth_UnhealthyAfterClose(t *testing.T) {
	backend := memory.New()
	client, err := NewClient(testConfig(), backend)
	require.NoError(t, err)

	require.NoError(t, client.Close(context.Background()))

	// Health never returns an error; failure is captured in the result.
	status := client.Health(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.NotEmpty(t, status.Details)
}
