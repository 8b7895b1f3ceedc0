// Package apperr defines the error taxonomy shared by stores, services and
// the HTTP gateway.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInvalidState
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Machine readable codes carried next to the kind.
const (
	CodeInvalidArgument    = "invalid_argument"
	CodeEmptyCart          = "empty_cart"
	CodeProductUnavailable = "product_unavailable"
	CodeInvalidTransition  = "invalid_transition"
	CodeCheckoutInProgress = "checkout_in_progress"
	CodeDuplicate          = "duplicate"
)

// Error is an application error. Message is safe to show to clients except
// for KindInternal and KindUnavailable, where Err carries the cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
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

func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, CodeInvalidArgument, message, nil)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, "", message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, "", message, nil)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message, nil)
}

func InvalidState(code, message string) *Error {
	return New(KindInvalidState, code, message, nil)
}

func Unavailable(message string, err error) *Error {
	return New(KindUnavailable, "", message, err)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, "", message, err)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind onto the status code the gateway responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
