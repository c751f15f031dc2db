// Package apperr defines the error taxonomy shared by the registration
// engine, the event service, and the HTTP surface. Each error carries a
// Kind that the HTTP edge maps to a status code; callers compare kinds
// with errors.Is against the package-level sentinels or with As against
// *Error when they need the message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status-code mapping at the HTTP edge.
type Kind int

const (
	// Internal is an unexpected error; its message is generic in
	// production and detailed in development.
	Internal Kind = iota
	InvalidInput
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	BusinessRule
	RateLimited
	Transient
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case BusinessRule:
		return "business_rule"
	case RateLimited:
		return "rate_limited"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is the concrete error type produced by New and Wrap. It is safe
// to compare its Kind with errors.Is against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is one of the sentinel Kind markers,
// allowing errors.Is(err, apperr.ErrNotFound) style checks.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && other.Message == ""
}

// New builds an *Error of the given kind with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind, preserving err for
// errors.Unwrap/errors.As while presenting message to callers.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// KindOf extracts the Kind of err, defaulting to Internal when err does
// not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Sentinels usable with errors.Is to classify an error without caring
// about its message.
var (
	ErrInvalidInput    = &Error{Kind: InvalidInput}
	ErrUnauthenticated = &Error{Kind: Unauthenticated}
	ErrForbidden       = &Error{Kind: Forbidden}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrConflict        = &Error{Kind: Conflict}
	ErrBusinessRule    = &Error{Kind: BusinessRule}
	ErrRateLimited     = &Error{Kind: RateLimited}
	ErrTransient       = &Error{Kind: Transient}
)
