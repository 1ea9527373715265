package store

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// WithCorrelationID attaches a correlation id to ctx. The HTTP layer sets
// it from the incoming request so every store operation in the request is
// traceable end to end.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom returns the correlation id attached to ctx, minting a
// fresh one when absent.
func CorrelationIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
