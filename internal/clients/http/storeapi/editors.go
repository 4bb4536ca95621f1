package storeapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id of every store API call.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the bearer token of the caller bound to ctx, if any.
type TokenSource func(ctx context.Context) (string, bool)

type requestIDKey struct{}

// ContextWithRequestID binds a correlation id that outgoing requests reuse.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(id))
}

// RequestIDFromContext returns the correlation id bound to ctx.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// WithBearerToken forwards the caller's credentials on every request.
// Requests made without a token in context are sent unauthenticated.
func WithBearerToken(source TokenSource) ClientOption {
	return WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
		if source == nil {
			return nil
		}
		if token, ok := source(ctx); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	})
}

// WithRequestID stamps every request with the context correlation id, or a fresh
// uuid when none is bound.
func WithRequestID() ClientOption {
	return WithRequestEditorFn(func(ctx context.Context, req *http.Request) error {
		id, ok := RequestIDFromContext(ctx)
		if !ok {
			id = uuid.NewString()
		}
		req.Header.Set(RequestIDHeader, id)
		return nil
	})
}
