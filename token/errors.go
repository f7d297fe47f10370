package token

import "errors"

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrWrongKind        = errors.New("token has the wrong kind")
)

// Reason returns a short label for a verification failure, for logs and
// metrics only.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrWrongKind):
		return "wrong_kind"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	}
	return "unknown"
}
