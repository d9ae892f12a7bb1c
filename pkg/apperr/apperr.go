// Package apperr is the error taxonomy shared by services and the HTTP layer.
// Services return *Error values; the router translates their Kind into a
// status code. Anything that is not an *Error is an unhandled failure.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindMalformedID
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindMalformedID:
		return "malformatted id"
	case KindValidation:
		return "validation failed"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// Error carries a Kind, a client-facing message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target without a message
// matches every message, so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	ErrMalformedID     = &Error{Kind: KindMalformedID}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
)

func MalformedID() error { return &Error{Kind: KindMalformedID, Msg: "malformatted id"} }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps err to a status code and client message. ok is false for
// errors outside the taxonomy.
func HTTPStatus(err error) (status int, msg string, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "", false
	}
	switch e.Kind {
	case KindMalformedID, KindValidation:
		status = http.StatusBadRequest
	case KindUnauthenticated, KindForbidden:
		status = http.StatusUnauthorized
	case KindNotFound:
		status = http.StatusNotFound
	default:
		return http.StatusInternalServerError, "", false
	}
	return status, e.Error(), true
}
