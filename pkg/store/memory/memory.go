// Package memory provides an in-process Store implementation with the same
// optimistic-concurrency and pagination semantics as the managed backends.
// It backs unit tests and the `memory` backend for local development.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/ragstore/pkg/store"
)

type itemKey struct {
	partitionKey string
	id           string
}

// Store is a thread-safe in-memory document store.
type Store struct {
	mu         sync.RWMutex
	containers map[string]map[itemKey]store.Item
	closed     bool
}

// New creates an empty in-memory store with the given containers.
func New(containers ...string) *Store {
	s := &Store{containers: make(map[string]map[itemKey]store.Item)}
	for _, c := range containers {
		s.containers[c] = make(map[itemKey]store.Item)
	}
	return s
}

// container returns the named container, creating it on first write access.
// Callers must hold the write lock.
func (s *Store) container(name string) map[itemKey]store.Item {
	c, ok := s.containers[name]
	if !ok {
		c = make(map[itemKey]store.Item)
		s.containers[name] = c
	}
	return c
}

func copyItem(it store.Item) store.Item {
	out := it
	out.Data = append([]byte(nil), it.Data...)
	return out
}

func meta(start time.Time, charge float64) store.Metadata {
	latency := time.Since(start)
	return store.Metadata{
		RequestCharge: charge,
		Latency:       latency,
		LatencyMS:     latency.Milliseconds(),
	}
}

// Read implements store.Store.
func (s *Store) Read(_ context.Context, container, id, partitionKey string) (*store.Item, store.Metadata, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.containers[container][itemKey{partitionKey, id}]
	if !ok {
		return nil, meta(start, 1), store.ErrNotFound
	}
	out := copyItem(it)
	return &out, meta(start, 1), nil
}

// Create implements store.Store.
func (s *Store) Create(_ context.Context, container string, item store.Item) (*store.Item, store.Metadata, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.container(container)
	key := itemKey{item.PartitionKey, item.ID}
	if _, exists := c[key]; exists {
		return nil, meta(start, 1), store.ErrAlreadyExists
	}

	item.ETag = uuid.New().String()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	c[key] = copyItem(item)
	out := copyItem(item)
	return &out, meta(start, 5), nil
}

// Replace implements store.Store.
func (s *Store) Replace(_ context.Context, container string, item store.Item, etag string) (*store.Item, store.Metadata, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.container(container)
	key := itemKey{item.PartitionKey, item.ID}
	current, exists := c[key]
	if !exists {
		return nil, meta(start, 1), store.ErrNotFound
	}
	if etag != "" && current.ETag != etag {
		return nil, meta(start, 1), store.ErrConflict
	}

	item.ETag = uuid.New().String()
	item.CreatedAt = current.CreatedAt
	c[key] = copyItem(item)
	out := copyItem(item)
	return &out, meta(start, 5), nil
}

// Query implements store.Store with keyset pagination ordered by
// (CreatedAt, ID) descending.
func (s *Store) Query(_ context.Context, container string, q store.Query) (*store.Page, store.Metadata, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []store.Item
	for key, it := range s.containers[container] {
		if q.PartitionKey != "" && key.partitionKey != q.PartitionKey {
			continue
		}
		if q.PartitionPrefix != "" && !strings.HasPrefix(key.partitionKey, q.PartitionPrefix) {
			continue
		}
		matched = append(matched, copyItem(it))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if q.Token != "" {
		afterCreated, afterID, err := store.DecodeToken(q.Token)
		if err != nil {
			return nil, meta(start, 1), err
		}
		idx := 0
		for idx < len(matched) {
			it := matched[idx]
			if it.CreatedAt.Before(afterCreated) ||
				(it.CreatedAt.Equal(afterCreated) && it.ID < afterID) {
				break
			}
			idx++
		}
		matched = matched[idx:]
	}

	pageSize := store.ClampPageSize(q.PageSize)
	page := &store.Page{}
	if len(matched) > pageSize {
		page.Items = matched[:pageSize]
		last := page.Items[len(page.Items)-1]
		page.Token = store.EncodeToken(last.CreatedAt, last.ID)
	} else {
		page.Items = matched
	}

	return page, meta(start, float64(len(page.Items))+1), nil
}

// Ping implements store.Store.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("store is closed")
	}
	return nil
}

// ContainerExists implements store.Store. Containers are created lazily, so
// any name is reachable while the store is open.
func (s *Store) ContainerExists(context.Context, string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("store is closed")
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
