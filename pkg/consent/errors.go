package consent

import (
	"errors"
	"fmt"
)

// Kind defines the normalized failure taxonomy for client errors.
//
// All operations classify failures into these kinds, allowing callers to
// branch between "no consent" handling and "service unavailable" handling
// without inspecting raw messages or status codes. The two must never be
// conflated: absence of consent is a value, not an error.
type Kind string

const (
	// KindInvalidInput indicates the call was rejected locally before any I/O
	KindInvalidInput Kind = "invalid_input"

	// KindNetwork indicates a transport failure with no usable response
	KindNetwork Kind = "network"

	// KindAuth indicates the API key was rejected
	KindAuth Kind = "auth"

	// KindNotFound indicates the referenced user or purpose is unknown
	KindNotFound Kind = "not_found"

	// KindAPI indicates any other non-success response
	KindAPI Kind = "api"

	// KindContract indicates a success response whose body did not match the contract
	KindContract Kind = "contract"
)

// Error wraps client failures with normalized categorization.
//
// Status and Body are populated from the HTTP response when one was
// received; for KindInvalidInput and KindNetwork no response exists and
// Status is zero. The client never swallows a failure: every failing call
// surfaces an *Error to its caller (batch lookups convert per-item
// failures into data instead, which is the one sanctioned exception).
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Body    string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("consent %s [%s]: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("consent %s [%s]: %s", e.Op, e.Kind, e.Message)
}

// Unwrap supports error unwrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a classified error for failures without an HTTP response.
func newError(kind Kind, op, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// KindOf extracts the kind from an error.
// Returns the empty kind when err was not produced by this client.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsInvalidInput checks whether the call was rejected locally before any I/O.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsNetwork checks whether the failure was transport-level with no response.
func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

// IsAuth checks whether the platform rejected the API key.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// IsNotFound checks whether the referenced user or purpose is unknown.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsAPI checks whether the platform returned an otherwise unclassified
// non-success response.
func IsAPI(err error) bool {
	return KindOf(err) == KindAPI
}

// IsContract checks whether a success response failed to decode into the
// documented shape.
func IsContract(err error) bool {
	return KindOf(err) == KindContract
}
