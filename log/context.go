package log

import (
	"context"

	"github.com/google/uuid"
)

type correlationIDType int

const requestIDKey correlationIDType = iota

// WithRequestID returns a context which knows its request ID.
// A request ID tracks a single submission through verification and storage.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithNewRequestID does the same thing as WithRequestID but generates a new, random request ID.
func WithNewRequestID(ctx context.Context) context.Context {
	return WithRequestID(ctx, uuid.NewString())
}

// ExtractRequestID extracts the request id from a context object.
func ExtractRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}
