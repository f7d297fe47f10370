package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	DefaultAccessTokenExpiry  = 24 * time.Hour
	DefaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Claims is the payload of both token kinds. Refresh tokens carry no email.
type Claims struct {
	Email string `json:"email,omitempty"`
	Kind  Kind   `json:"kind"`
	jwt.RegisteredClaims
}

type Manager struct {
	signer             Signer
	issuer             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func New(signer Signer, options ...ManagerOption) (*Manager, error) {
	if signer == nil {
		return nil, errors.New("[token.New] signer is required")
	}
	m := &Manager{signer: signer}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = DefaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = DefaultRefreshTokenExpiry
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m, nil
}

// IssueAccess signs an access token for the subject.
func (m *Manager) IssueAccess(subjectID, email string) (string, error) {
	return m.issue(subjectID, email, KindAccess, m.accessTokenExpiry)
}

// IssueRefresh signs a refresh token for the subject.
func (m *Manager) IssueRefresh(subjectID string) (string, error) {
	return m.issue(subjectID, "", KindRefresh, m.refreshTokenExpiry)
}

func (m *Manager) issue(subjectID, email string, kind Kind, ttl time.Duration) (string, error) {
	if subjectID == "" {
		return "", errors.New("[Manager.issue] subject is required")
	}
	now := m.nowFunc()
	claims := Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "[Manager.issue] sign %s token", kind)
	}
	return signed, nil
}

// Verify checks an access token.
func (m *Manager) Verify(raw string) (*Claims, error) {
	return m.verify(raw, KindAccess)
}

// VerifyRefresh checks a refresh token.
func (m *Manager) VerifyRefresh(raw string) (*Claims, error) {
	return m.verify(raw, KindRefresh)
}

// verify reports ErrExpired for any token whose exp has passed, whatever the
// state of its signature.
func (m *Manager) verify(raw string, want Kind) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}
	now := m.nowFunc()

	unverified := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, unverified); err != nil {
		return nil, ErrMalformed
	}
	if unverified.ExpiresAt == nil || !now.Before(unverified.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, m.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{m.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, ErrMalformed
	}

	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	if claims.Kind != want {
		return nil, ErrWrongKind
	}
	return claims, nil
}
