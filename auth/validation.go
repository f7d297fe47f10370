package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/users"
)

// SignupRequest is the input to Signup. Role is optional.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     string `json:"role"`
}

// normaliseEmail lowercases and trims so lookups are case-insensitive.
func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks required fields and resolves the requested role. An absent
// role means RoleUser.
func (r SignupRequest) Validate() (users.RoleType, error) {
	if normaliseEmail(r.Email) == "" || r.Password == "" {
		return "", ErrCredentialsRequired
	}
	if strings.TrimSpace(r.Role) == "" {
		return users.RoleUser, nil
	}
	role, err := users.ParseRole(r.Role)
	if err != nil {
		return "", apperrors.Newf(apperrors.ErrValidation, "invalid role %q", r.Role)
	}
	return role, nil
}

// ChangePasswordRequest is the input to ChangePassword.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" {
		return apperrors.Newf(apperrors.ErrValidation, "currentPassword and newPassword are required")
	}
	if r.CurrentPassword == r.NewPassword {
		return apperrors.Newf(apperrors.ErrValidation, "new password must differ from the current one")
	}
	return nil
}
