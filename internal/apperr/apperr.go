// Package apperr defines the typed failure value returned by every fallible
// link and account operation. The HTTP layer is the only place that turns an
// *Error into a response.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The zero value is Internal so that an
// unclassified error is never reported as something more specific.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Unauthorized
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a Kind, a message safe to show a caller, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind whose cause is err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFoundf(format string, args ...any) *Error     { return New(NotFound, format, args...) }
func Unauthorizedf(format string, args ...any) *Error { return New(Unauthorized, format, args...) }
func Validationf(format string, args ...any) *Error   { return New(Validation, format, args...) }
func Conflictf(format string, args ...any) *Error     { return New(Conflict, format, args...) }

// Internalf wraps a storage or transaction failure. The message is generic on
// purpose; the cause stays available to logs through Unwrap.
func Internalf(err error, format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or Internal when
// there is none. KindOf(nil) is Internal as well; callers check err != nil first.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-facing message of err. Errors without an *Error
// in their chain get a generic message so storage details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal error"
}
