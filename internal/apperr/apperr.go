// Package apperr defines the error kinds the service layer raises and the
// handler layer maps to transport status codes. Services never import net/http;
// handlers never inspect error strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInternal is the zero value — anything unclassified is internal.
	KindInternal Kind = iota
	// KindValidation: malformed input, caller-recoverable.
	KindValidation
	// KindAuthorization: the resolved scope forbids the operation. The message
	// must never reveal whether out-of-scope records exist.
	KindAuthorization
	// KindNotFound: record absent within the caller's scope — used uniformly
	// whether the record is truly absent or merely out of scope.
	KindNotFound
	// KindConflict: duplicate receipt, double repayment, already-sold unit.
	KindConflict
	// KindConfiguration: a programming/configuration bug (unknown catalog
	// resource, missing filter). Must surface at startup or in tests.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-safe message, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func Authorization(format string, args ...interface{}) *Error {
	return New(KindAuthorization, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func Configuration(format string, args ...interface{}) *Error {
	return New(KindConfiguration, format, args...)
}

// KindOf extracts the kind from any error in the chain; KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
