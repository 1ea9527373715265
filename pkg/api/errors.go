package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/codeready-toolchain/ragstore/pkg/partition"
	"github.com/codeready-toolchain/ragstore/pkg/services"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

// Error kinds surfaced in the envelope's error.code field.
const (
	codeNotFound      = "NotFound"
	codeAlreadyExists = "AlreadyExists"
	codeConflict      = "Conflict"
	codeMalformedKey  = "MalformedPartitionKey"
	codeValidation    = "ValidationError"
	codeTransient     = "TransientStoreError"
	codeInternal      = "InternalError"
)

// mapServiceError translates a service-layer error into an HTTP status and
// an envelope error code.
func mapServiceError(err error) (int, string, string) {
	var validErr *services.ValidationError
	switch {
	case errors.As(err, &validErr):
		return http.StatusBadRequest, codeValidation, validErr.Error()
	case errors.Is(err, partition.ErrMalformedKey):
		return http.StatusBadRequest, codeMalformedKey, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, codeNotFound, "resource not found"
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict, codeAlreadyExists, "resource already exists"
	case errors.Is(err, services.ErrConcurrentModification):
		return http.StatusConflict, codeConflict, "concurrent modification detected, re-read and retry"
	case store.IsTransient(err):
		return http.StatusServiceUnavailable, codeTransient, "store is temporarily unavailable"
	}

	// Unexpected error
	slog.Error("Unexpected service error", "error", err)
	return http.StatusInternalServerError, codeInternal, "internal server error"
}
