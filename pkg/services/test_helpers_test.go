package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/store"
	"github.com/codeready-toolchain/ragstore/pkg/store/memory"
)

// newTestClient builds a memory-backed database client with fast retry
// timing.
func newTestClient(t *testing.T) *database.Client {
	t.Helper()
	return newTestClientWith(t, memory.New(database.KnownContainers...))
}

func newTestClientWith(t *testing.T, backend store.Store) *database.Client {
	t.Helper()
	cfg := database.Config{
		Endpoint:   "localhost",
		DatabaseID: "ragstore-test",
		Retry: &database.RetryOptions{
			MaxRetryAttemptCount:             3,
			FixedRetryIntervalInMilliseconds: 1,
			MaxRetryWaitTimeInSeconds:        1,
		},
	}
	client, err := database.NewClient(cfg, backend)
	require.NoError(t, err)
	return client
}

// stubStore wraps a real backend and injects failures for specific
// operations.
type stubStore struct {
	store.Store

	// replaceErr, when set, fails every Replace.
	replaceErr error

	// transientReads fails that many Reads with a transient error before
	// letting them through.
	transientReads int
}

func (s *stubStore) Replace(ctx context.Context, container string, item store.Item, etag string) (*store.Item, store.Metadata, error) {
	if s.replaceErr != nil {
		return nil, store.Metadata{}, s.replaceErr
	}
	return s.Store.Replace(ctx, container, item, etag)
}

func (s *stubStore) Read(ctx context.Context, container, id, partitionKey string) (*store.Item, store.Metadata, error) {
	if s.transientReads > 0 {
		s.transientReads--
		return nil, store.Metadata{}, store.Transient(errors.New("429 too many requests"))
	}
	return s.Store.Read(ctx, container, id, partitionKey)
}
