// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// The ledger consumes exactly two facts from the host environment per
// operation: the authenticated caller identity and the current logical
// height. Middleware sets both; services read them from context and never
// touch net/http.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	height := requestcontext.Height(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCaller(ctx, caller)
//	ctx = requestcontext.WithHeight(ctx, height)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithCaller(ctx, "alice")
//	ctx = requestcontext.WithHeight(ctx, 5000)
package requestcontext

import (
	"context"

	id "vouch/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey    struct{}
	heightKey    struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyCaller    = callerKey{}
	ContextKeyHeight    = heightKey{}
	ContextKeyRequestID = requestIDKey{}
)

// Caller retrieves the authenticated caller account from the context.
// Returns the zero value if not set.
func Caller(ctx context.Context) id.AccountID {
	if caller, ok := ctx.Value(ContextKeyCaller).(id.AccountID); ok {
		return caller
	}
	return ""
}

// WithCaller injects the authenticated caller account into the context.
func WithCaller(ctx context.Context, caller id.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Height retrieves the logical height from the context. Returns 0 if not
// set (for non-HTTP contexts like workers and tests that predate height
// injection).
func Height(ctx context.Context) uint64 {
	if h, ok := ctx.Value(ContextKeyHeight).(uint64); ok {
		return h
	}
	return 0
}

// WithHeight injects the logical height into the context. The host
// guarantees heights are monotonically non-decreasing across operations;
// this package only carries the value.
func WithHeight(ctx context.Context, height uint64) context.Context {
	return context.WithValue(ctx, ContextKeyHeight, height)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}
