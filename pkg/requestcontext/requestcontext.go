// Package requestcontext provides typed accessors for request-scoped values.
//
// Middleware deposits values (request ID, authenticated subject, client
// metadata) and downstream layers read them without touching raw context keys.
package requestcontext

import (
	"context"
	"time"
)

type requestIDKey struct{}
type userEmailKey struct{}
type clientIPKey struct{}
type userAgentKey struct{}
type clockKey struct{}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID retrieves the request correlation ID, or "" when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithUserEmail stores the authenticated subject's email in the context.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey{}, email)
}

// UserEmail retrieves the authenticated subject's email, or "" when the
// request is unauthenticated.
func UserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(userEmailKey{}).(string); ok {
		return email
	}
	return ""
}

// WithClientMetadata stores the client IP and User-Agent in the context.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientIP retrieves the client IP, or "unknown" when absent.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// UserAgent retrieves the client User-Agent, or "" when absent.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClock pins the request-scoped clock. Tests use this to evaluate
// time-dependent state (consent expiry) at a fixed instant.
func WithClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

// Now returns the current time from the request-scoped clock, falling back
// to time.Now. All expiry comparisons within one request share this value's
// source so a request never observes two different clocks.
func Now(ctx context.Context) time.Time {
	if clock, ok := ctx.Value(clockKey{}).(func() time.Time); ok && clock != nil {
		return clock()
	}
	return time.Now()
}
