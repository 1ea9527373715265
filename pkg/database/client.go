// Package database provides the process-wide store connection and the
// per-entity-family container cache. The client is constructed once by the
// composition root and injected into each repository; "one connection per
// process" is a property of the wiring, not of hidden global state.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codeready-toolchain/ragstore/pkg/retry"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// Container names, one per entity family.
const (
	ContainerProjects   = "projects"
	ContainerSessions   = "chat-sessions"
	ContainerDocuments  = "documents"
	ContainerEmbeddings = "embeddings"
)

// KnownContainers lists every container the health reporter verifies.
var KnownContainers = []string{
	ContainerProjects,
	ContainerSessions,
	ContainerDocuments,
	ContainerEmbeddings,
}

// ErrNotConfigured is returned when a client is constructed without the
// required configuration fields.
var ErrNotConfigured = errors.New("database client is not configured")

// Client holds one authenticated store connection and a cache of container
// handles, created on first access and never evicted. The cache is
// append-only and safe for concurrent use.
type Client struct {
	backend store.Store
	cfg     Config

	mu         sync.RWMutex
	containers map[string]*Container
}

// NewClient wraps an already-connected backend. The endpoint and database
// id must be present; everything else has defaults.
func NewClient(cfg Config, backend store.Store) (*Client, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: backend is nil", ErrNotConfigured)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrNotConfigured)
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: database id is required", ErrNotConfigured)
	}
	return &Client{
		backend:    backend,
		cfg:        cfg,
		containers: make(map[string]*Container),
	}, nil
}

// Container returns the cached handle for name, creating it on first use.
func (c *Client) Container(name string) *Container {
	c.mu.RLock()
	h, ok := c.containers[name]
	c.mu.RUnlock()
	if ok {
		return h
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok = c.containers[name]; ok {
		return h
	}
	h = &Container{name: name, backend: c.backend}
	c.containers[name] = h
	return h
}

// RetryOptions returns the executor options derived from the client
// configuration; repositories wrap store calls with them.
func (c *Client) RetryOptions() retry.Options {
	return c.cfg.retryOptions()
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.cfg }

// Close releases the underlying store connection.
func (c *Client) Close(ctx context.Context) error {
	return c.backend.Close(ctx)
}

// Container is a handle binding the shared backend to one container name.
type Container struct {
	name    string
	backend store.Store
}

// Name returns the container name.
func (h *Container) Name() string { return h.name }

// Read performs a point read in this container.
func (h *Container) Read(ctx context.Context, id, partitionKey string) (*store.Item, store.Metadata, error) {
	return h.backend.Read(ctx, h.name, id, partitionKey)
}

// Create inserts a new item into this container.
func (h *Container) Create(ctx context.Context, item store.Item) (*store.Item, store.Metadata, error) {
	return h.backend.Create(ctx, h.name, item)
}

// Replace overwrites an item in this container, conditioned on etag when
// non-empty.
func (h *Container) Replace(ctx context.Context, item store.Item, etag string) (*store.Item, store.Metadata, error) {
	return h.backend.Replace(ctx, h.name, item, etag)
}

// Query runs a partition-scoped range query in this container.
func (h *Container) Query(ctx context.Context, q store.Query) (*store.Page, store.Metadata, error) {
	return h.backend.Query(ctx, h.name, q)
}
