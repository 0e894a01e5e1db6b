package consent

import (
	"log/slog"
	"strings"
	"time"

	"assent/pkg/consent/tracer"
)

type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for outbound requests.
// Any *http.Client satisfies HTTPDoer. Nil values are ignored.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request with a per-call deadline, layered on top
// of whatever deadline the caller's context already carries.
// If not set, requests stay unbounded: a hung connection blocks until the
// context is cancelled, so deployments should configure either this option
// or a transport-level timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger instance for client diagnostics.
// Without a logger the client stays silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug toggles verbose per-request diagnostics.
// Verbosity only: no behavioral effect on requests or results. The API key
// never appears in output, only a redacted suffix.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header for outbound requests.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		userAgent = strings.TrimSpace(userAgent)
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithMetrics sets the metrics instance for the client
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used to emit one span per operation.
// Defaults to a no-op tracer. Nil values are ignored.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithBatchConcurrency bounds the number of concurrent lookups a batch
// check may run. If not set or set to zero/negative, the batch fans out
// all lookups at once.
func WithBatchConcurrency(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.batchConcurrency = limit
		}
	}
}
