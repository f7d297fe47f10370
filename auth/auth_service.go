package auth

import (
	"context"

	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/jrsteele09/eventhub-auth/users"
	"github.com/pkg/errors"
)

// TokenIssuer signs access and refresh tokens.
type TokenIssuer interface {
	IssueAccess(subjectID, email string) (string, error)
	IssueRefresh(subjectID string) (string, error)
}

// TokenVerifier checks tokens of each kind.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
	VerifyRefresh(raw string) (*token.Claims, error)
}

// TokenService both issues and verifies tokens. *token.Manager satisfies it.
type TokenService interface {
	TokenIssuer
	TokenVerifier
}

// SigninResult is returned by a successful Signin.
type SigninResult struct {
	User         *users.User
	AccessToken  string
	RefreshToken string
}

// SessionService runs signup, signin, refresh and the account operations
// that sit next to them.
type SessionService struct {
	users  users.UserRepo
	tokens TokenService
	hash   func(string) (string, error)
}

type SessionServiceOption func(*SessionService)

// WithHasher replaces the password hash function.
func WithHasher(hash func(string) (string, error)) SessionServiceOption {
	return func(s *SessionService) {
		s.hash = hash
	}
}

func NewSessionService(userRepo users.UserRepo, tokens TokenService, options ...SessionServiceOption) (*SessionService, error) {
	if userRepo == nil {
		return nil, errors.New("[NewSessionService] Users repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewSessionService] token service is required")
	}

	s := &SessionService{
		users:  userRepo,
		tokens: tokens,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.hash == nil {
		s.hash = users.HashPassword
	}
	return s, nil
}

// Signup registers a new identity. Nothing is returned on success.
func (s *SessionService) Signup(ctx context.Context, req SignupRequest) error {
	role, err := req.Validate()
	if err != nil {
		return err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return apperrors.WithCause(apperrors.ErrInternal, errors.Wrap(err, "[SessionService.Signup] hash"), "internal error")
	}

	u := &users.User{
		Email:        normaliseEmail(req.Email),
		PasswordHash: hash,
		Name:         req.Name,
		Surname:      req.Surname,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return storeError(err, "[SessionService.Signup] create")
	}
	return nil
}

// Signin checks the credentials and issues a token pair. An unknown email is
// NotFound, a wrong password is Unauthorized.
func (s *SessionService) Signin(ctx context.Context, email, password string) (*SigninResult, error) {
	email = normaliseEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "[SessionService.Signin] lookup")
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidPassword
	}

	access, err := s.tokens.IssueAccess(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrInternal, err, "internal error")
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrInternal, err, "internal error")
	}

	return &SigninResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is left as is. No store lookup happens, so the new access token
// carries no email.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.Newf(apperrors.ErrUnauthorized, msgRefreshRequired)
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperrors.WithCause(apperrors.ErrUnauthorized, err, msgInvalidRefresh)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	access, err := s.tokens.IssueAccess(claims.Subject, "")
	if err != nil {
		return "", apperrors.WithCause(apperrors.ErrInternal, err, "internal error")
	}
	return access, nil
}

// CurrentUser returns the identity behind subjectID.
func (s *SessionService) CurrentUser(ctx context.Context, subjectID string) (*users.User, error) {
	u, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return nil, storeError(err, "[SessionService.CurrentUser] lookup")
	}
	return u, nil
}

// ListUsers returns all identities.
func (s *SessionService) ListUsers(ctx context.Context) ([]*users.User, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err, "[SessionService.ListUsers] list")
	}
	return list, nil
}

// UpdateRole sets the role of userID. Unknown roles are a validation error.
func (s *SessionService) UpdateRole(ctx context.Context, userID, role string) (*users.User, error) {
	r, err := users.ParseRole(role)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrValidation, "%s. Must be one of: %s", msgInvalidRole, roleList())
	}
	u, err := s.users.UpdateRole(ctx, userID, r)
	if err != nil {
		return nil, storeError(err, "[SessionService.UpdateRole] update")
	}
	return u, nil
}

// ChangePassword replaces the password of subjectID after checking the
// current one.
func (s *SessionService) ChangePassword(ctx context.Context, subjectID string, req ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return storeError(err, "[SessionService.ChangePassword] lookup")
	}
	if !u.CheckPassword(req.CurrentPassword) {
		return ErrInvalidPassword
	}

	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return apperrors.WithCause(apperrors.ErrInternal, errors.Wrap(err, "[SessionService.ChangePassword] hash"), "internal error")
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return storeError(err, "[SessionService.ChangePassword] update")
	}
	return nil
}

func roleList() string {
	out := ""
	for i, r := range users.Roles() {
		if i > 0 {
			out += ", "
		}
		out += string(r)
	}
	return out
}
