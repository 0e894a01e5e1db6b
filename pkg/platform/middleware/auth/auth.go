package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "assent/pkg/domain-errors"
	"assent/pkg/requestcontext"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the identity extracted from a validated token.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// accessClaims is the JWT shape issued by SignToken and accepted by
// HMACValidator.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// HMACValidator validates HS256-signed tokens against a shared key.
// Tokens signed with any other algorithm are rejected outright.
type HMACValidator struct {
	signingKey []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{signingKey: []byte(signingKey)}
}

// ValidateToken checks signature and expiry and requires an email identity,
// taken from the email claim or falling back to the subject.
func (v *HMACValidator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	email := claims.Email
	if email == "" {
		email = claims.Subject
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no email identity")
	}

	result := &Claims{
		Subject: claims.Subject,
		Email:   email,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

// SignToken issues a short-lived HS256 token carrying the email identity.
// Dev and test helper; production deployments validate tokens minted by
// their identity provider.
func SignToken(signingKey, email string, ttl time.Duration) (string, error) {
	if email == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "email is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString([]byte(signingKey))
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth returns middleware that validates bearer tokens and deposits
// the authenticated email into the request context for downstream guards.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithUserEmail(ctx, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromRequest extracts the authenticated email deposited by
// RequireAuth. The boolean reports whether one is present.
func EmailFromRequest(r *http.Request) (string, bool) {
	email := requestcontext.UserEmail(r.Context())
	return email, email != ""
}
