package httpclient

import (
	"context"

	"github.com/milan604/client-lab/pkg/logger"
)

type contextKey string

// requestIDKey carries the per-request correlation id shared by the request
// and response hook events.
const requestIDKey contextKey = "httpclient.request_id"

func init() {
	// Context-aware log calls pick up the correlation id automatically.
	logger.RegisterContextKey(requestIDKey, "request_id")
}

// ContextWithRequestID returns a context carrying the given correlation id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation id, if any.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
