// Package domainerrors defines the coded error taxonomy shared by services,
// stores, and the HTTP layer. Services return these so transport code can map
// failures to status codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeValidation marks malformed or incomplete input. Rejected before any
	// mutation takes place.
	CodeValidation Code = "validation_error"

	// CodeConflict marks operations that lost against concurrent or prior
	// state, e.g. merging into a tombstoned person. Safe to retry on ingest.
	CodeConflict Code = "conflict"

	// CodeNotFound marks lookups for unknown persons, decisions, or sources.
	CodeNotFound Code = "not_found"

	// CodeProtected marks attempts to delete seeded core resources.
	CodeProtected Code = "protected_resource"

	// CodeInternal marks unexpected failures. Details are logged, never
	// returned to callers.
	CodeInternal Code = "internal_error"
)

// Error carries a code plus a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New constructs a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
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

// Is treats two coded errors with the same code as equivalent, so sentinel
// comparisons like errors.Is(err, domainerrors.New(CodeNotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
