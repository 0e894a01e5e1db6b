package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"assent/internal/platform/metrics"
	"assent/pkg/platform/httputil"
	"assent/pkg/requestcontext"
)

// Throttle limits each client IP to limit requests per sliding window,
// mimicking the platform's upstream throttling. A non-positive limit is a
// pass-through.
//
// Every response carries X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected requests add Retry-After and the standard
// error envelope with a 429.
func Throttle(limit int, window time.Duration, m *metrics.Metrics) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := newIPLimiter(limit, window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			now := requestcontext.Now(ctx)
			allowed, remaining, resetAt := limiter.allow(requestcontext.ClientIP(ctx), now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				if m != nil {
					m.IncrementThrottledRequests()
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(now, resetAt)))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error":             "rate_limit_exceeded",
					"error_description": "Too many requests from this IP address. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ipLimiter tracks request timestamps per client over a sliding window.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string][]time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string][]time.Time),
	}
}

// allow records the request unless the client already spent its window
// budget. resetAt is when the oldest counted request leaves the window.
func (l *ipLimiter) allow(key string, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.buckets[key]
	cutoff := now.Add(-l.window)
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	stamps = stamps[i:]

	if len(stamps) >= l.limit {
		l.buckets[key] = stamps
		return false, 0, stamps[0].Add(l.window)
	}

	stamps = append(stamps, now)
	l.buckets[key] = stamps
	return true, l.limit - len(stamps), stamps[0].Add(l.window)
}

func retryAfterSeconds(now, resetAt time.Time) int {
	seconds := int(resetAt.Sub(now).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}
