package config

import (
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCostVar  = "BCRYPT_COST"
	signinRateVar  = "SIGNIN_RATE_PER_SECOND"
	signinBurstVar = "SIGNIN_BURST"
	trustProxyVar  = "TRUST_PROXY_HEADERS"
)

type SecurityConfig interface {
	GetBcryptCost() int
	GetSigninRatePerSecond() float64
	GetSigninBurst() int
	GetTrustProxyHeaders() bool
}

type Security struct {
	src *source
}

var _ SecurityConfig = Security{}

func (s Security) GetBcryptCost() int {
	cost, err := strconv.Atoi(s.src.get(bcryptCostVar, ""))
	if err != nil {
		return bcrypt.DefaultCost
	}
	return cost
}

// GetSigninRatePerSecond returns 0 when signin throttling is off.
func (s Security) GetSigninRatePerSecond() float64 {
	r, err := s.signinRate()
	if err != nil {
		return 0
	}
	return r
}

func (s Security) GetSigninBurst() int {
	b, err := strconv.Atoi(s.src.get(signinBurstVar, "10"))
	if err != nil || b < 1 {
		return 10
	}
	return b
}

// GetTrustProxyHeaders reports whether X-Forwarded-For identifies the client.
// Only enable it behind a proxy that overwrites the header.
func (s Security) GetTrustProxyHeaders() bool {
	trust, err := strconv.ParseBool(s.src.get(trustProxyVar, "false"))
	return err == nil && trust
}

func (s Security) signinRate() (float64, error) {
	r, err := strconv.ParseFloat(s.src.get(signinRateVar, "5"), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", signinRateVar)
	}
	if r < 0 {
		return 0, errors.Errorf("%s must not be negative", signinRateVar)
	}
	return r, nil
}
