package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codeready-toolchain/ragstore/pkg/retry"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// opResult pairs a store item with its operation metadata so the retry
// executor can carry both through a single generic type parameter.
type opResult struct {
	item *store.Item
	md   store.Metadata
}

// execItem runs one store operation through the retry executor. Only
// transient store errors are retried; validation and partition-key errors
// never reach this path. The returned metadata carries the correlation id
// and the attempt count of the final invocation.
func execItem(ctx context.Context, opts retry.Options, fn func(context.Context) (*store.Item, store.Metadata, error)) (*store.Item, store.Metadata, error) {
	opts.RetryIf = store.IsTransient

	start := time.Now()
	res, attempts, err := retry.Do(ctx, opts, func(ctx context.Context) (opResult, error) {
		item, md, err := fn(ctx)
		return opResult{item: item, md: md}, err
	})

	md := res.md
	md.CorrelationID = store.CorrelationIDFrom(ctx)
	md.Attempts = attempts
	if md.Latency == 0 {
		md.Latency = time.Since(start)
		md.LatencyMS = md.Latency.Milliseconds()
	}
	return res.item, md, err
}

// execQuery is execItem for paginated queries.
func execQuery(ctx context.Context, opts retry.Options, fn func(context.Context) (*store.Page, store.Metadata, error)) (*store.Page, store.Metadata, error) {
	opts.RetryIf = store.IsTransient

	type queryResult struct {
		page *store.Page
		md   store.Metadata
	}

	start := time.Now()
	res, attempts, err := retry.Do(ctx, opts, func(ctx context.Context) (queryResult, error) {
		page, md, err := fn(ctx)
		return queryResult{page: page, md: md}, err
	})

	md := res.md
	md.CorrelationID = store.CorrelationIDFrom(ctx)
	md.Attempts = attempts
	if md.Latency == 0 {
		md.Latency = time.Since(start)
		md.LatencyMS = md.Latency.Milliseconds()
	}
	return res.page, md, err
}

// translate maps store-level errors onto the service error taxonomy. No
// repository method lets a raw store error escape unmapped.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrAlreadyExists
	case errors.Is(err, store.ErrConflict):
		return ErrConcurrentModification
	default:
		return err
	}
}

// marshalItem serializes an entity into a store item.
func marshalItem(id, partitionKey string, createdAt time.Time, entity any) (store.Item, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return store.Item{}, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return store.Item{
		ID:           id,
		PartitionKey: partitionKey,
		CreatedAt:    createdAt,
		Data:         data,
	}, nil
}

// unmarshalItem deserializes a store item into entity.
func unmarshalItem(item *store.Item, entity any) error {
	if err := json.Unmarshal(item.Data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
