// Package models defines the four entity families persisted by the data
// core and the request/option types the repositories accept.
package models

import "time"

// Entity carries the attributes shared by every persisted record. Each
// record also stores its own partition key segments as plain fields so the
// key can be rebuilt from the record alone.
type Entity struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
	// Version increments on every successful update.
	Version   int64 `json:"version"`
	IsDeleted bool  `json:"isDeleted,omitempty"`

	// ETag is the store-issued concurrency token. It is not part of the
	// document payload; repositories thread it between reads and
	// conditioned writes.
	ETag string `json:"-"`
}

// ListOptions controls paginated listings. PageSize is clamped to
// [1, 100] with a default of 20; it is never an error.
type ListOptions struct {
	PageSize          int    `json:"pageSize,omitempty"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// Page is one page of a listing plus the token resuming the next one.
type Page[T any] struct {
	Items             []T    `json:"items"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}
