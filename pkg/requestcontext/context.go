// Package requestcontext provides HTTP-independent accessors for
// request-scoped values. Middleware sets them, services read them, and tests
// inject them without running the full middleware chain.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	reviewerKey    struct{}
	requestTimeKey struct{}
)

// RequestID retrieves the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Reviewer retrieves the acting reviewer identity, or "" if unset. Review
// actions record it on merge edges and resolution decisions.
func Reviewer(ctx context.Context) string {
	if who, ok := ctx.Value(reviewerKey{}).(string); ok {
		return who
	}
	return ""
}

// WithReviewer injects the acting reviewer identity into the context.
func WithReviewer(ctx context.Context, reviewer string) context.Context {
	return context.WithValue(ctx, reviewerKey{}, reviewer)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts like workers and tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
