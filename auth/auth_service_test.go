package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/eventhub-auth/auth"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/jrsteele09/eventhub-auth/users"
	fakeuserrepo "github.com/jrsteele09/eventhub-auth/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	secretStr        = "1234"
	testUserEmail    = "ana@x.io"
	testUserPassword = "pw"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo   *fakeuserrepo.FakeUserRepo
	tokens     *token.Manager
	service    *auth.SessionService
	authorizer *auth.Authorizer
	now        time.Time
}

func fastHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)
	f.tokens, err = token.New(signer, token.WithNowFunc(func() time.Time { return f.now }))
	require.NoError(t, err)

	f.service, err = auth.NewSessionService(f.userRepo, f.tokens, auth.WithHasher(fastHash))
	require.NoError(t, err)
	f.authorizer, err = auth.NewAuthorizer(f.userRepo, f.tokens)
	require.NoError(t, err)
	return f
}

// createUser signs up a user and returns its stored record
func (f *testFixture) createUser(t *testing.T, email string, role users.RoleType) *users.User {
	t.Helper()
	require.NoError(t, f.service.Signup(context.Background(), auth.SignupRequest{
		Email:    email,
		Password: testUserPassword,
		Role:     string(role),
	}))
	u, err := f.userRepo.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

func TestNewSessionServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewSessionService(nil, nil)
	require.Error(t, err)

	_, err = auth.NewSessionService(fakeuserrepo.NewFakeUserRepo(), nil)
	require.Error(t, err)
}

func TestSignupDefaultsToUserRole(t *testing.T) {
	f := setupTestFixture(t)

	err := f.service.Signup(context.Background(), auth.SignupRequest{Email: testUserEmail, Password: testUserPassword, Name: "Ana"})
	require.NoError(t, err)

	u, err := f.userRepo.GetByEmail(context.Background(), testUserEmail)
	require.NoError(t, err)
	require.Equal(t, users.RoleUser, u.Role)
	require.Equal(t, "Ana", u.Name)
	require.NotEqual(t, testUserPassword, u.PasswordHash)
	require.True(t, u.CheckPassword(testUserPassword))
}

func TestSignupWithRole(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, "org@x.io", users.RoleOrganisation)
	require.Equal(t, users.RoleOrganisation, u.Role)
}

func TestSignupValidation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	cases := []auth.SignupRequest{
		{Email: "", Password: "pw"},
		{Email: "a@x.io", Password: ""},
		{Email: "   ", Password: "pw"},
		{Email: "a@x.io", Password: "pw", Role: "superuser"},
	}
	for _, req := range cases {
		err := f.service.Signup(ctx, req)
		require.ErrorIs(t, err, apperrors.ErrValidation, "%+v", req)
	}

	list, err := f.userRepo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleUser)

	err := f.service.Signup(context.Background(), auth.SignupRequest{Email: "ANA@x.io", Password: "other"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Equal(t, "email already registered", apperrors.Message(err))
}

func TestSignin(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, testUserEmail, users.RoleUser)

	res, err := f.service.Signin(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, u.ID, res.User.ID)

	access, err := f.tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, access.Subject)
	require.Equal(t, testUserEmail, access.Email)
	require.Equal(t, f.now.Add(24*time.Hour), access.ExpiresAt.Time.UTC())

	refresh, err := f.tokens.VerifyRefresh(res.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, refresh.Subject)
	require.Equal(t, f.now.Add(7*24*time.Hour), refresh.ExpiresAt.Time.UTC())
}

func TestSigninUnknownEmail(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Signin(context.Background(), "nobody@x.io", "pw")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSigninMissingCredentials(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleUser)

	_, err := f.service.Signin(context.Background(), "", testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.service.Signin(context.Background(), testUserEmail, "")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSigninWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleUser)

	res, err := f.service.Signin(context.Background(), testUserEmail, "wrong")
	require.Nil(t, res)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, testUserEmail, users.RoleUser)
	res, err := f.service.Signin(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.now = f.now.Add(3 * 24 * time.Hour)
	access, err := f.service.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)

	claims, err := f.tokens.Verify(access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, f.now.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())

	// the refresh token is not rotated
	_, err = f.service.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejections(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, testUserEmail, users.RoleUser)
	res, err := f.service.Signin(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.service.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.service.Refresh(context.Background(), res.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.ErrorIs(t, err, token.ErrWrongKind)

	f.now = f.now.Add(8 * 24 * time.Hour)
	_, err = f.service.Refresh(context.Background(), res.RefreshToken)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestCurrentUser(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, testUserEmail, users.RoleModerator)

	got, err := f.service.CurrentUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, users.RoleModerator, got.Role)

	_, err = f.service.CurrentUser(context.Background(), "ghost")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateRole(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, testUserEmail, users.RoleUser)

	updated, err := f.service.UpdateRole(context.Background(), u.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, updated.Role)

	_, err = f.service.UpdateRole(context.Background(), u.ID, "root")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.service.UpdateRole(context.Background(), "ghost", "admin")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, "a@x.io", users.RoleUser)
	f.createUser(t, "b@x.io", users.RoleAdmin)

	list, err := f.service.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestChangePassword(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createUser(t, testUserEmail, users.RoleUser)
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, u.ID, auth.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new"})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = f.service.ChangePassword(ctx, u.ID, auth.ChangePasswordRequest{CurrentPassword: testUserPassword, NewPassword: ""})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	err = f.service.ChangePassword(ctx, u.ID, auth.ChangePasswordRequest{CurrentPassword: testUserPassword, NewPassword: "new"})
	require.NoError(t, err)

	_, err = f.service.Signin(ctx, testUserEmail, testUserPassword)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = f.service.Signin(ctx, testUserEmail, "new")
	require.NoError(t, err)
}
