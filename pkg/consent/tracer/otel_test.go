package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"assent/pkg/consent/tracer"
)

// The adapter runs against a no-op provider; what matters is that every
// Span method drives the OTel calls without panicking, including the error
// path and the attribute conversion fallback.
func TestOTelTracer(t *testing.T) {
	t.Run("with injected tracer", func(t *testing.T) {
		tp := noop.NewTracerProvider()
		tr := tracer.NewOTel(tracer.WithOTelTracer(tp.Tracer("test")))

		ctx, span := tr.Start(context.Background(), "consent.status",
			tracer.String("email_hash", "abc123"),
			tracer.Bool("has_consent", true),
			tracer.Int64("consent_count", 2),
			tracer.Float64("ratio", 0.5),
			tracer.Duration("latency", 150*time.Millisecond),
		)
		require.NotNil(t, ctx)
		require.NotNil(t, span)

		span.SetAttributes(tracer.Attribute{Key: "raw", Value: []string{"stringified"}})
		span.AddEvent("purposes.page_fetched", tracer.Int64("page", 1))
		span.End(nil)
	})

	t.Run("error marks the span failed", func(t *testing.T) {
		tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))
		_, span := tr.Start(context.Background(), "consent.check")
		span.End(errors.New("upstream returned 500"))
	})

	t.Run("defaults to the global provider", func(t *testing.T) {
		tr := tracer.NewOTel()
		_, span := tr.Start(context.Background(), "consent.purposes")
		require.NotNil(t, span)
		span.End(nil)
	})
}
