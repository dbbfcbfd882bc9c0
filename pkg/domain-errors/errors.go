// Package derrors defines the typed error taxonomy shared by all giggate
// modules. Services return these; the HTTP layer translates codes to statuses.
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers. The string value doubles as the wire
// representation in HTTP error envelopes.
type Code string

const (
	// CodeValidation marks malformed create/submit parameters. Always
	// caller-recoverable, never retried automatically.
	CodeValidation Code = "validation_error"

	// CodeBadRequest marks requests that could not be parsed at all.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks lookups for unknown gig/request ids.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks actor mismatches on mutating operations.
	CodeUnauthorized Code = "unauthorized"

	// CodeConflict marks terminal-state guard violations (AlreadyDecided,
	// AlreadyInactive). Expected under races, not bugs.
	CodeConflict Code = "conflict"

	// CodeInvariantViolation marks attempts to construct or transition a
	// domain object into an illegal state.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInvalidLevel marks a verification level outside the fixed set.
	CodeInvalidLevel Code = "invalid_level"

	// CodeInsufficientDeposit marks a deposit below the level minimum.
	CodeInsufficientDeposit Code = "insufficient_deposit"

	// CodeUnavailable marks an unreachable collaborator (oracle, center).
	CodeUnavailable Code = "unavailable"

	// CodeInternal marks unexpected failures. Message is not exposed over HTTP.
	CodeInternal Code = "internal_error"
)

// Error is the concrete typed error carried across module boundaries.
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

// New constructs a typed error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause, preserving the
// chain for errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var typed *Error
	for errors.As(err, &typed) {
		if typed.Code == code {
			return true
		}
		err = typed.Unwrap()
		if err == nil {
			return false
		}
		typed = nil
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost typed message, or empty for untyped errors.
func MessageOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return ""
}
