// Package guard provides the consent authorization middleware factory.
//
// A guard is bound to one purpose at construction and admits a request
// only when the acting user holds an active consent for that purpose.
// Guards are stateless and safe to reuse across concurrent requests.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"assent/pkg/requestcontext"
)

// Checker answers consent checks for one user/purpose pair.
// *consent.Client satisfies it.
type Checker interface {
	HasConsent(ctx context.Context, email, purposeUUID string) (bool, error)
}

// IdentityFunc extracts the acting user's identifier from a request.
// The boolean reports whether an identity is present.
type IdentityFunc func(*http.Request) (string, bool)

// Config carries the guard's optional collaborators.
type Config struct {
	// Identity extracts the acting user. Defaults to the email the auth
	// middleware deposited in the request context.
	Identity IdentityFunc

	// Logger receives decision diagnostics. Without a logger the guard
	// stays silent.
	Logger *slog.Logger

	// Metrics counts decisions by purpose and outcome when attached.
	Metrics *Metrics
}

// Decision outcomes used as metric labels.
const (
	outcomeAllowed         = "allowed"
	outcomeDenied          = "denied"
	outcomeUnauthenticated = "unauthenticated"
	outcomeError           = "error"
)

// RequireConsent returns middleware enforcing that the acting user holds
// an active consent for the given purpose.
//
// Absent identity is 401 and the checker is never consulted. A holder
// without consent is 403 with a payload naming the purpose. A checker
// failure is 500; the upstream detail goes to the log, never the
// response. Only a positive check passes control through unchanged.
func RequireConsent(checker Checker, purposeUUID string, cfg Config) func(http.Handler) http.Handler {
	identity := cfg.Identity
	if identity == nil {
		identity = contextIdentity
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			email, ok := identity(r)
			if !ok || email == "" {
				if cfg.Logger != nil {
					cfg.Logger.WarnContext(ctx, "consent guard - no authenticated identity",
						"purpose_uuid", purposeUUID,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				cfg.count(purposeUUID, outcomeUnauthenticated)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			granted, err := checker.HasConsent(ctx, email, purposeUUID)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.ErrorContext(ctx, "consent guard - check failed",
						"error", err,
						"purpose_uuid", purposeUUID,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				cfg.count(purposeUUID, outcomeError)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to verify consent")
				return
			}

			if !granted {
				if cfg.Logger != nil {
					cfg.Logger.WarnContext(ctx, "consent guard - consent missing",
						"purpose_uuid", purposeUUID,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				cfg.count(purposeUUID, outcomeDenied)
				writeMissingConsent(w, purposeUUID)
				return
			}

			cfg.count(purposeUUID, outcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

// contextIdentity reads the email the auth middleware deposited.
func contextIdentity(r *http.Request) (string, bool) {
	email := requestcontext.UserEmail(r.Context())
	return email, email != ""
}

func (c Config) count(purpose, outcome string) {
	if c.Metrics != nil {
		c.Metrics.IncrementDecisions(purpose, outcome)
	}
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// writeMissingConsent writes the 403 payload naming the purpose the user
// has not consented to.
func writeMissingConsent(w http.ResponseWriter, purposeUUID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write(fmt.Appendf(nil,
		`{"error":"missing_consent","error_description":"User has not granted consent for this purpose","purpose_uuid":"%s"}`,
		purposeUUID))
}
