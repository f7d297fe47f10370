package config

import (
	"time"

	"github.com/pkg/errors"
)

const (
	authSecretVar      = "AUTH_SECRET"
	accessTokenTTLVar  = "ACCESS_TOKEN_TTL"
	refreshTokenTTLVar = "REFRESH_TOKEN_TTL"
	tokenIssuerVar     = "TOKEN_ISSUER"
)

type TokenConfig interface {
	GetAuthSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetTokenIssuer() string
}

type Token struct {
	src *source
}

var _ TokenConfig = Token{}

// GetAuthSecret has no default.
func (t Token) GetAuthSecret() string {
	return t.src.get(authSecretVar, "")
}

func (t Token) GetAccessTokenTTL() time.Duration {
	d, err := t.accessTTL()
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func (t Token) GetRefreshTokenTTL() time.Duration {
	d, err := t.refreshTTL()
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

func (t Token) GetTokenIssuer() string {
	return t.src.get(tokenIssuerVar, "eventhub-auth")
}

func (t Token) accessTTL() (time.Duration, error) {
	return parseTTL(accessTokenTTLVar, t.src.get(accessTokenTTLVar, "24h"))
}

func (t Token) refreshTTL() (time.Duration, error) {
	return parseTTL(refreshTokenTTLVar, t.src.get(refreshTokenTTLVar, "168h"))
}

func parseTTL(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s must be positive", key)
	}
	return d, nil
}
