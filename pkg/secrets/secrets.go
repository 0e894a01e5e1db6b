// Package secrets generates and verifies the API keys that authenticate
// callers against the consent platform.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "assent/pkg/domain-errors"
)

// keyBytes is the entropy of generated keys (256 bits).
const keyBytes = 32

// KeyPrefix marks generated keys so secret scanners and log filters can
// recognize them without knowing the value.
const KeyPrefix = "assent_"

// Generate creates a cryptographically secure API key. The value is the
// KeyPrefix followed by base64url-encoded random bytes, suitable for the
// X-API-Key header as-is.
func Generate() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate api key")
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of the key for secret managers that require
// hashes at rest. The plaintext key is handed to the client once and never
// stored.
func Hash(key string) (string, error) {
	if key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "api key cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "api key is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash api key")
	}
	return string(hashed), nil
}

// Verify checks a plaintext key against a bcrypt hash produced by Hash.
func Verify(key, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify api key")
	}
	return nil
}
