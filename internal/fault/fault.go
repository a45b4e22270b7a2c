// Package fault is the error taxonomy shared by all request handlers.
// Every refusal the domain can produce is one of these kinds; the HTTP
// layer maps kinds to status codes and a stable machine-readable code.
package fault

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	InvalidInput
	Conflict
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds a fault with the kind's default code.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: kind.Code(), Message: message}
}

// WithCode builds a fault with a more specific code, e.g.
// INVALID_STATE_TRANSITION under the Conflict kind.
func WithCode(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (k Kind) Code() string {
	switch k {
	case Unauthenticated:
		return "UNAUTHENTICATED"
	case Forbidden:
		return "FORBIDDEN"
	case NotFound:
		return "NOT_FOUND"
	case InvalidInput:
		return "INVALID_INPUT"
	case Conflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindOf reports the kind of err, or Internal for anything outside the
// taxonomy.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}
