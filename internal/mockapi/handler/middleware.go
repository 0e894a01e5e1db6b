package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"assent/internal/platform/metrics"
	"assent/pkg/platform/httputil"
	"assent/pkg/requestcontext"
)

// RequireAPIKey authenticates requests via the X-API-Key header. The
// comparison runs in constant time regardless of where the values diverge.
func RequireAPIKey(expected string, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := r.Header.Get("X-API-Key")

			if key == "" {
				if logger != nil {
					logger.WarnContext(ctx, "request without API key",
						"request_id", requestcontext.RequestID(ctx),
						"path", r.URL.Path,
					)
				}
				if m != nil {
					m.IncrementAuthFailures()
				}
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "missing_api_key",
					"error_description": "X-API-Key header required",
				})
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				if logger != nil {
					logger.WarnContext(ctx, "request with invalid API key",
						"request_id", requestcontext.RequestID(ctx),
						"path", r.URL.Path,
					)
				}
				if m != nil {
					m.IncrementAuthFailures()
				}
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "invalid_api_key",
					"error_description": "API key is not valid",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SimulateLatency delays every request by d to mimic an upstream network
// hop. A non-positive d is a pass-through.
func SimulateLatency(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
