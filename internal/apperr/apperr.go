// Package apperr defines the error kinds surfaced by domain operations.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

// Error kinds.
const (
	KindUnauthenticated          Kind = "unauthenticated"
	KindUnauthorized             Kind = "unauthorized"
	KindNotFound                 Kind = "not_found"
	KindInsufficientAvailability Kind = "insufficient_availability"
	KindInvariantViolation       Kind = "invariant_violation"
)

// Error is a domain error. Operations that fail with an *Error have written nothing.
type Error struct {
	Kind    Kind
	Message string

	// Available is set for KindInsufficientAvailability.
	Available int

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a missing identity.
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "not authenticated"}
}

// Unauthorized reports an identity lacking the required role or ownership.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NotFound reports a missing entity, e.g. NotFound("project", 7).
func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

// PositionNotFound reports a 1-based position outside a collection of size elements.
func PositionNotFound(position, size int) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("position %d out of range 1..%d", position, size)}
}

// Insufficient reports a request for more units than are available.
func Insufficient(requested, available int) *Error {
	return &Error{
		Kind:      KindInsufficientAvailability,
		Message:   fmt.Sprintf("insufficient availability: requested %d, available %d", requested, available),
		Available: available,
	}
}

// Invariant reports an operation that would break a data invariant.
func Invariant(format string, args ...any) *Error {
	return &Error{Kind: KindInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" if err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a domain error of kind k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
