package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assent/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestRequestID verifies correlation ID propagation.
// Invariant: every response carries X-Request-ID, and handlers see the same
// value through the context.
func TestRequestID(t *testing.T) {
	t.Run("client-provided ID is kept", func(t *testing.T) {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "client-id-42")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "client-id-42", seen)
		assert.Equal(t, "client-id-42", w.Header().Get("X-Request-ID"))
	})

	t.Run("missing ID is generated", func(t *testing.T) {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "generated request ID should be a UUID")
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("hostile IDs are replaced", func(t *testing.T) {
		hostile := []string{
			"bad id with spaces",
			"newline\ninjection",
			strings.Repeat("a", MaxRequestIDLength+1),
		}
		for _, id := range hostile {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestcontext.RequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", id)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			require.NotEmpty(t, seen)
			assert.NotEqual(t, id, seen, "hostile ID %q must not be kept", id)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		}
	})
}

// TestRecovery verifies a panicking handler yields a 500 instead of crashing.
func TestRecovery(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestLogger verifies the logging wrapper preserves the handler's status code.
func TestLogger(t *testing.T) {
	handler := Logger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

// TestClientMetadata verifies forwarded headers are honored only when the
// peer is a trusted proxy.
func TestClientMetadata(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trusted    []string
		wantIP     string
		wantUA     string
	}{
		{
			name:       "remote address wins when no proxies are trusted",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "User-Agent": "curl/8.5.0"},
			wantIP:     "192.168.1.1",
			wantUA:     "curl/8.5.0",
		},
		{
			name:       "forwarded header wins behind a trusted proxy",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "203.0.113.1",
		},
		{
			name:       "first hop of a multi-proxy chain is the client",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "203.0.113.1",
		},
		{
			name:       "garbage forwarded value falls back to the peer",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "10.0.0.1",
		},
		{
			name:       "oversized forwarded chain falls back to the peer",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": strings.Repeat("1", MaxForwardedForLength+1)},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "10.0.0.1",
		},
		{
			name:       "X-Real-IP covers proxies that do not set XFF",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			trusted:    []string{"10.0.0.0/8"},
			wantIP:     "203.0.113.7",
		},
		{
			name:       "bracketed IPv6 peer is unwrapped",
			remoteAddr: "[2001:db8::1]:443",
			wantIP:     "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trusted []netip.Prefix
			for _, cidr := range tt.trusted {
				trusted = append(trusted, netip.MustParsePrefix(cidr))
			}

			var gotIP, gotUA string
			handler := ClientMetadata(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotUA = requestcontext.UserAgent(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIP, gotIP)
			if tt.wantUA != "" {
				assert.Equal(t, tt.wantUA, gotUA)
			}
		})
	}
}

// TestRequestClock verifies repeated reads during one request observe one
// instant.
func TestRequestClock(t *testing.T) {
	var first, second time.Time
	handler := RequestClock(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(5 * time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, first.IsZero())
	assert.Equal(t, first, second)
}
