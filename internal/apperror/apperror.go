// Package apperror defines the error kinds surfaced by the recipe API and
// their mapping onto HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable classification of an error.
type Kind string

const (
	// InvalidParameter indicates a query parameter failed to parse as its expected type.
	InvalidParameter Kind = "InvalidParameter"
	// StorageError indicates the store was unreachable or rejected the query.
	StorageError Kind = "StorageError"
	// IntegrityError indicates a stored record could not be decoded.
	IntegrityError Kind = "IntegrityError"
	// RateLimitExceeded indicates the client exceeded the request budget.
	RateLimitExceeded Kind = "RateLimitExceeded"
	// Internal is used for anything not classified above.
	Internal Kind = "Internal"
)

var kindToStatusCode = map[Kind]int{
	InvalidParameter:  http.StatusBadRequest,
	StorageError:      http.StatusInternalServerError,
	IntegrityError:    http.StatusInternalServerError,
	RateLimitExceeded: http.StatusTooManyRequests,
	Internal:          http.StatusInternalServerError,
}

// StatusCode returns the HTTP status for the kind.
func (k Kind) StatusCode() int {
	if code, ok := kindToStatusCode[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	return string(k)
}

// Error is a classified error. Message is safe to show to clients; Cause is
// for logs only.
type Error struct {
	Kind      Kind
	Message   string
	Parameter string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Parameter != "" {
		prefix = fmt.Sprintf("%s(%s)", e.Kind, e.Parameter)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error's kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// NewInvalidParameter reports a parameter whose value could not be parsed.
func NewInvalidParameter(parameter, value string) *Error {
	return &Error{
		Kind:      InvalidParameter,
		Parameter: parameter,
		Message:   fmt.Sprintf("invalid value %q for parameter %q: expected a positive integer", value, parameter),
	}
}

// NewStorage wraps a failure returned by the store.
func NewStorage(cause error) *Error {
	return &Error{
		Kind:    StorageError,
		Message: "database error",
		Cause:   cause,
	}
}

// NewIntegrity reports a record whose stored data could not be decoded.
func NewIntegrity(recordID int64, cause error) *Error {
	return &Error{
		Kind:    IntegrityError,
		Message: fmt.Sprintf("recipe %d has malformed stored data", recordID),
		Cause:   cause,
	}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// KindOf returns the kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}
