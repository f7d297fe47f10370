package auth

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/users"
	pkgerrors "github.com/pkg/errors"
)

// Caller-facing messages.
const (
	msgCredentialsRequired = "email and password are required"
	msgEmailExists         = "email already registered"
	msgInvalidRole         = "invalid role"
	msgUserNotFound        = "User Not found."
	msgInvalidPassword     = "Invalid Password!"
	msgNoToken             = "No token provided!"
	msgUnauthorized        = "Unauthorized!"
	msgRefreshRequired     = "Refresh token is required"
	msgInvalidRefresh      = "Invalid refresh token"
)

var (
	ErrCredentialsRequired = apperrors.Newf(apperrors.ErrValidation, msgCredentialsRequired)
	ErrInvalidPassword     = apperrors.Newf(apperrors.ErrUnauthorized, msgInvalidPassword)
	ErrNoToken             = apperrors.Newf(apperrors.ErrForbidden, msgNoToken)
)

// storeError classifies a credential store failure. Context errors pass
// through untouched so callers can tell a cancelled request from a failure.
func storeError(err error, op string) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, users.ErrUserNotFound):
		return apperrors.WithCause(apperrors.ErrNotFound, err, msgUserNotFound)
	case errors.Is(err, users.ErrEmailExists):
		return apperrors.WithCause(apperrors.ErrValidation, err, msgEmailExists)
	case errors.Is(err, users.ErrInvalidRole):
		return apperrors.WithCause(apperrors.ErrValidation, err, msgInvalidRole)
	}
	return apperrors.WithCause(apperrors.ErrInternal, pkgerrors.Wrap(err, op), "internal error")
}

// IsCancelled reports whether err came from a cancelled or expired request
// context.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
