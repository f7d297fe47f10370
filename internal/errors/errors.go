package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by the session flow and the authorization gates.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTooLarge     = errors.New("request too large")
	ErrInternal     = errors.New("internal error")
)

// Error carries a kind, a message that is safe to return to callers and an
// optional cause that is only ever logged.
type Error struct {
	kind  error
	msg   string
	cause error
}

// Newf builds an error of the given kind with a caller-facing message.
func Newf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WithCause builds an error of the given kind that keeps cause in its chain.
func WithCause(kind error, cause error, msg string) error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Message returns the caller-facing text for err. Causes never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	switch Kind(err) {
	case ErrValidation:
		return "invalid request"
	case ErrNotFound:
		return "not found"
	case ErrUnauthorized:
		return "Unauthorized!"
	case ErrForbidden:
		return "forbidden"
	case ErrTooLarge:
		return "request too large"
	}
	return "internal error"
}

// Kind reports which kind err belongs to, defaulting to ErrInternal.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrForbidden, ErrTooLarge} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
