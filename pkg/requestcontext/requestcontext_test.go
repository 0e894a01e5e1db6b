package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRequestScopedValues verifies typed accessors round-trip values and
// return safe zero values on an empty context.
// Invariant: accessors never panic on contexts that skipped middleware.
func TestRequestScopedValues(t *testing.T) {
	t.Run("empty context returns zero values", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, "", RequestID(ctx))
		assert.Equal(t, "", UserEmail(ctx))
		assert.Equal(t, "unknown", ClientIP(ctx))
		assert.Equal(t, "", UserAgent(ctx))
	})

	t.Run("values round-trip", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		ctx = WithUserEmail(ctx, "alice@example.com")
		ctx = WithClientMetadata(ctx, "203.0.113.7", "curl/8.0")

		assert.Equal(t, "req-123", RequestID(ctx))
		assert.Equal(t, "alice@example.com", UserEmail(ctx))
		assert.Equal(t, "203.0.113.7", ClientIP(ctx))
		assert.Equal(t, "curl/8.0", UserAgent(ctx))
	})

	t.Run("empty client IP falls back to unknown", func(t *testing.T) {
		ctx := WithClientMetadata(context.Background(), "", "curl/8.0")
		assert.Equal(t, "unknown", ClientIP(ctx))
	})
}

// TestNow verifies the request-scoped clock override.
// Invariant: a pinned clock is authoritative for the whole request; without
// one, Now falls back to wall time.
func TestNow(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := WithClock(context.Background(), func() time.Time { return fixed })
	assert.Equal(t, fixed, Now(ctx))

	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before), "fallback clock should not run backwards")
}
