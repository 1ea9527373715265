// Package store defines the document-store boundary the repositories depend
// on: point reads, etag-conditioned writes, partition-scoped paginated
// queries, and a metadata read for health checks. Any backend exposing
// hierarchical partition keys and optimistic concurrency can implement it.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Item is the raw document exchanged with a backend. Data carries the
// entity JSON; ETag is the store-issued concurrency token, opaque to
// callers and empty until the item has been persisted once.
type Item struct {
	ID           string
	PartitionKey string
	ETag         string
	CreatedAt    time.Time
	Data         json.RawMessage
}

// Query describes a partition-scoped range query. Results are ordered by
// (CreatedAt, ID) descending; Token resumes a prior page.
type Query struct {
	// PartitionKey restricts the query to one partition. Empty scans the
	// whole container (expensive; health and admin paths only).
	PartitionKey string
	// PartitionPrefix restricts to all partitions under a key prefix,
	// e.g. "/tenant-a/" for a tenant-wide listing.
	PartitionPrefix string
	PageSize        int
	Token           string
}

// Page is one page of query results. Token is non-empty when more results
// exist and resumes exactly after the last returned item.
type Page struct {
	Items []Item
	Token string
}

// Metadata carries per-operation diagnostics surfaced to callers: a
// correlation id, the store-reported cost in request units, observed
// latency and the number of attempts the retry executor spent.
type Metadata struct {
	CorrelationID string        `json:"correlationId,omitempty"`
	RequestCharge float64       `json:"requestCharge"`
	Latency       time.Duration `json:"-"`
	LatencyMS     int64         `json:"latencyMs"`
	Attempts      int           `json:"attempts,omitempty"`
}

// Store is the backend contract. Implementations must return ErrNotFound,
// ErrAlreadyExists and ErrConflict for the corresponding conditions and
// wrap transient faults in TransientError so the retry executor can
// classify them.
type Store interface {
	// Read performs a point read. Returns ErrNotFound when absent.
	Read(ctx context.Context, container, id, partitionKey string) (*Item, Metadata, error)

	// Create inserts a new item. Returns ErrAlreadyExists when an item
	// with the same (partitionKey, id) exists.
	Create(ctx context.Context, container string, item Item) (*Item, Metadata, error)

	// Replace overwrites an existing item. When etag is non-empty the
	// write is conditioned on it and ErrConflict is returned on mismatch.
	// Returns ErrNotFound when the target is absent.
	Replace(ctx context.Context, container string, item Item, etag string) (*Item, Metadata, error)

	// Query runs a partition-scoped range query with continuation.
	Query(ctx context.Context, container string, q Query) (*Page, Metadata, error)

	// Ping verifies the connection by reading store metadata.
	Ping(ctx context.Context) error

	// ContainerExists issues a cheap existence check for one container.
	ContainerExists(ctx context.Context, container string) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// continuationCursor is the keyset cursor serialized into continuation
// tokens by backends that paginate on (created_at, id).
type continuationCursor struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

// EncodeToken renders a keyset cursor as an opaque continuation token.
func EncodeToken(createdAt time.Time, id string) string {
	raw, _ := json.Marshal(continuationCursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeToken parses a continuation token produced by EncodeToken.
func DecodeToken(token string) (createdAt time.Time, id string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid continuation token: %w", err)
	}
	var c continuationCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return time.Time{}, "", fmt.Errorf("invalid continuation token: %w", err)
	}
	return c.CreatedAt, c.ID, nil
}

// Page-size bounds shared by all backends. Requests outside the range are
// clamped, never rejected.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPageSize normalizes a requested page size into [1, MaxPageSize],
// applying DefaultPageSize when unset or negative.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
