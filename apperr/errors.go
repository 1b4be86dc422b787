// Package apperr holds the error taxonomy shared by the services and the client core.
// Kinds are sentinel errors matched with errors.Is; *Error carries the operation and a
// user-facing message on top of a kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrNotFound          = errors.New("not found")
	ErrNetwork           = errors.New("network failure")
)

type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func New(kind error, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func InvalidTransition(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(op, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Network(op string, err error) error {
	return &Error{Kind: ErrNetwork, Op: op, Err: err}
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus turns a non-2xx response back into a kinded error on the client side.
func FromStatus(op string, code int, body string) error {
	msg := strings.TrimSpace(body)
	switch code {
	case http.StatusBadRequest:
		return &Error{Kind: ErrValidation, Op: op, Msg: msg}
	case http.StatusNotFound:
		return &Error{Kind: ErrNotFound, Op: op, Msg: msg}
	case http.StatusConflict:
		return &Error{Kind: ErrConflict, Op: op, Msg: msg}
	case http.StatusUnprocessableEntity:
		return &Error{Kind: ErrInvalidTransition, Op: op, Msg: msg}
	}
	if code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return &Error{Kind: ErrNetwork, Op: op, Msg: fmt.Sprintf("status %d: %s", code, msg)}
	}
	return &Error{Op: op, Msg: fmt.Sprintf("unexpected status %d: %s", code, msg)}
}
