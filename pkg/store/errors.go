package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by point reads and replaces when the target
	// item does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists is returned by Create when the (partitionKey, id)
	// pair is already present.
	ErrAlreadyExists = errors.New("item already exists")

	// ErrConflict is returned by Replace when the supplied etag no longer
	// matches the stored item.
	ErrConflict = errors.New("etag mismatch")
)

// TransientError wraps a rate-limit or connectivity fault that is safe to
// retry. RetryAfter carries a server-provided hint when available.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	return &TransientError{Err: err}
}

// IsTransient reports whether err is eligible for retry.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RetryAfterHint extracts the server-provided backoff hint, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var te *TransientError
	if errors.As(err, &te) && te.RetryAfter > 0 {
		return te.RetryAfter, true
	}
	return 0, false
}
