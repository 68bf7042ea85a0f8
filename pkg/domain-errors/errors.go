// Package domainerrors provides coded errors for the service layer. Stores
// return sentinel errors (pkg/platform/sentinel); services translate them
// into coded errors that handlers map onto HTTP statuses without string
// matching.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and tests.
type Code string

const (
	// CodeValidation covers malformed or out-of-range input: empty strings,
	// weights outside bounds, weight sums over 100, zero min-endorsements,
	// hashes of the wrong length.
	CodeValidation Code = "validation"

	// CodeInvalidDomain covers domain ids out of range and inactive domains
	// on paths that require an active domain.
	CodeInvalidDomain Code = "invalid_domain"

	// CodeNotFound covers absent endorsements, activities, verifications,
	// providers, and delegations.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized covers callers lacking owner, delegated-verifier, or
	// original-verifier privilege.
	CodeUnauthorized Code = "unauthorized"

	// CodeAlreadyVerified covers repeat verification of the same activity.
	CodeAlreadyVerified Code = "already_verified"

	// CodeSelfReference covers self-endorsement attempts.
	CodeSelfReference Code = "self_reference"

	CodeBadRequest         Code = "bad_request"
	CodeConflict           Code = "conflict"
	CodeInternal           Code = "internal"
	CodeInvariantViolation Code = "invariant_violation"
)

// Error carries a code alongside the message. It wraps an underlying cause
// when created via Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the HTTP status the transport layer should
// return.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeSelfReference, CodeInvalidDomain:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeAlreadyVerified, CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
