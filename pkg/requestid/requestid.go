// Package requestid correlates SDK calls with the API requests they issue.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// Header carries the request ID on every API request.
const Header = "X-Request-Id"

func Generate() string {
	return uuid.New().String()
}

// ToContext returns ctx carrying requestID. Every API request issued with it sends that ID.
func ToContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// FromContext returns the request ID of ctx, or an empty string.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromContextOrNew returns the request ID stored in ctx, or a freshly generated one.
func FromContextOrNew(ctx context.Context) string {
	if requestID := FromContext(ctx); requestID != "" {
		return requestID
	}
	return Generate()
}

// FromRequest returns the request ID an incoming request was tagged with by middleware.RequestID.
func FromRequest(r *http.Request) string {
	return FromContext(r.Context())
}
