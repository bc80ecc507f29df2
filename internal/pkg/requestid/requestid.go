// Package requestid carries the request id and the idempotency key across
// process boundaries.
package requestid

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	HeaderRequestID      = "X-Request-Id"
	HeaderIdempotencyKey = "X-Idempotency-Key"

	requestIDKey      contextKey = "x-request-id"
	idempotencyKeyKey contextKey = "x-idempotency-key"
)

// With returns ctx carrying the request id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// FromContext returns the request id of ctx. Ids assigned by chi's
// RequestID middleware are found as well.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return middleware.GetReqID(ctx)
}

// WithIdempotencyKey returns ctx carrying an idempotency key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey, key)
}

// IdempotencyKey returns the idempotency key of ctx, empty if none.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey).(string)
	return key
}

// Middleware runs after chi's RequestID. It stores the request id under
// this package's key, echoes it in the response and picks up the
// idempotency key header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			w.Header().Set(HeaderRequestID, id)
			ctx = With(ctx, id)
		}
		if key := r.Header.Get(HeaderIdempotencyKey); key != "" {
			ctx = WithIdempotencyKey(ctx, key)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
