package token_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func newManager(t *testing.T, secret string, c *clock) *token.Manager {
	t.Helper()
	signer, err := token.NewHMACSigner(secret)
	require.NoError(t, err)
	m, err := token.New(signer, token.WithNowFunc(c.Now), token.WithIssuer("eventhub"))
	require.NoError(t, err)
	return m
}

func TestNewRequiresSignerAndSecret(t *testing.T) {
	_, err := token.NewHMACSigner("")
	require.Error(t, err)

	_, err = token.New(nil)
	require.Error(t, err)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(t, "s", c)

	raw, err := m.IssueAccess("u1", "ana@x.io")
	require.NoError(t, err)

	claims, err := m.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "ana@x.io", claims.Email)
	require.Equal(t, token.KindAccess, claims.Kind)
	require.Equal(t, "eventhub", claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.Equal(t, c.now.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestAccessTokenLifetime(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(t, "s", c)
	raw, err := m.IssueAccess("u1", "ana@x.io")
	require.NoError(t, err)

	c.now = c.now.Add(24*time.Hour - time.Second)
	_, err = m.Verify(raw)
	require.NoError(t, err)

	c.now = c.now.Add(2 * time.Second)
	_, err = m.Verify(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestRefreshTokenLifetime(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := newManager(t, "s", c)
	raw, err := m.IssueRefresh("u1")
	require.NoError(t, err)

	c.now = c.now.Add(6 * 24 * time.Hour)
	claims, err := m.VerifyRefresh(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, token.KindRefresh, claims.Kind)
	require.Empty(t, claims.Email)

	c.now = c.now.Add(24*time.Hour + time.Second)
	_, err = m.VerifyRefresh(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestKindsAreNotInterchangeable(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, "s", c)

	refresh, err := m.IssueRefresh("u1")
	require.NoError(t, err)
	_, err = m.Verify(refresh)
	require.ErrorIs(t, err, token.ErrWrongKind)

	access, err := m.IssueAccess("u1", "a@x.io")
	require.NoError(t, err)
	_, err = m.VerifyRefresh(access)
	require.ErrorIs(t, err, token.ErrWrongKind)
}

func TestVerifyWithOtherSecret(t *testing.T) {
	c := &clock{now: time.Now()}
	issuer := newManager(t, "s1", c)
	verifier := newManager(t, "s2", c)

	raw, err := issuer.IssueAccess("u1", "a@x.io")
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, token.ErrInvalidSignature)
	require.Equal(t, "invalid_signature", token.Reason(err))
}

func TestExpiredWinsOverBadSignature(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := newManager(t, "s1", c)
	verifier := newManager(t, "s2", c)

	raw, err := issuer.IssueAccess("u1", "a@x.io")
	require.NoError(t, err)

	c.now = c.now.Add(48 * time.Hour)
	_, err = verifier.Verify(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestTamperedPayload(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, "s", c)

	raw, err := m.IssueAccess("u1", "a@x.io")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"sub":"u1"`, `"sub":"u2"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = m.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestMalformed(t *testing.T) {
	m := newManager(t, "s", &clock{now: time.Now()})

	for _, raw := range []string{"", "   ", "garbage", "a.b.c", "abc.def"} {
		_, err := m.Verify(raw)
		require.ErrorIs(t, err, token.ErrMalformed, raw)
		require.Equal(t, "malformed", token.Reason(err))
	}
}

func TestMissingExpiryIsRejected(t *testing.T) {
	c := &clock{now: time.Now()}
	signer, err := token.NewHMACSigner("s")
	require.NoError(t, err)
	m, err := token.New(signer, token.WithNowFunc(c.Now))
	require.NoError(t, err)

	raw, err := signer.Sign(token.Claims{Kind: token.KindAccess, RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestUnsignedTokenIsRejected(t *testing.T) {
	c := &clock{now: time.Now()}
	m := newManager(t, "s", c)

	claims := token.Claims{Kind: token.KindAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(c.now.Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(raw)
	require.Error(t, err)
	require.NotErrorIs(t, err, token.ErrExpired)
}

func TestCustomExpiry(t *testing.T) {
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	signer, err := token.NewHMACSigner("s")
	require.NoError(t, err)
	m, err := token.New(signer, token.WithNowFunc(c.Now), token.WithTokenExpiry(time.Minute, time.Hour))
	require.NoError(t, err)

	raw, err := m.IssueAccess("u1", "a@x.io")
	require.NoError(t, err)
	c.now = c.now.Add(2 * time.Minute)
	_, err = m.Verify(raw)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestReason(t *testing.T) {
	require.Equal(t, "ok", token.Reason(nil))
	require.Equal(t, "expired", token.Reason(token.ErrExpired))
	require.Equal(t, "wrong_kind", token.Reason(token.ErrWrongKind))
}
