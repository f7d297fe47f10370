package auth

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/jrsteele09/eventhub-auth/users"
)

// Authorizer holds the transport-free checks behind the middleware gates.
type Authorizer struct {
	users    users.UserRepo
	verifier TokenVerifier
}

func NewAuthorizer(userRepo users.UserRepo, verifier TokenVerifier) (*Authorizer, error) {
	if userRepo == nil {
		return nil, errors.New("[NewAuthorizer] Users repo is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewAuthorizer] token verifier is required")
	}
	return &Authorizer{users: userRepo, verifier: verifier}, nil
}

// VerifyIdentity checks a presented access token. An empty token is
// Forbidden, any verification failure is Unauthorized with the verifier's
// error kept as the cause.
func (a *Authorizer) VerifyIdentity(raw string) (*token.Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoToken
	}
	claims, err := a.verifier.Verify(raw)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrUnauthorized, err, msgUnauthorized)
	}
	return claims, nil
}

// RequireAnyRole reads the subject's current role from the store and admits
// it when it is one of roles. A missing subject or identity is Unauthorized,
// a role outside the set is Forbidden. If ctx ends during the lookup the
// context error is returned as is.
func (a *Authorizer) RequireAnyRole(ctx context.Context, subjectID string, roles ...users.RoleType) (*users.User, error) {
	if subjectID == "" {
		return nil, apperrors.Newf(apperrors.ErrUnauthorized, msgUnauthorized)
	}

	u, err := a.users.GetByID(ctx, subjectID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apperrors.WithCause(apperrors.ErrUnauthorized, err, msgUnauthorized)
		}
		return nil, storeError(err, "[Authorizer.RequireAnyRole] lookup")
	}

	if !u.HasRole(roles...) {
		return nil, apperrors.Newf(apperrors.ErrForbidden, "Require %s Role!", describeRoles(roles))
	}
	return u, nil
}

// RequireRole is RequireAnyRole with a single role.
func (a *Authorizer) RequireRole(ctx context.Context, subjectID string, role users.RoleType) (*users.User, error) {
	return a.RequireAnyRole(ctx, subjectID, role)
}

func describeRoles(roles []users.RoleType) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		s := string(r)
		if s != "" {
			s = strings.ToUpper(s[:1]) + s[1:]
		}
		names = append(names, s)
	}
	return strings.Join(names, " or ")
}
