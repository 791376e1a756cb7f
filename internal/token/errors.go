package token

import "errors"

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past.
	// The caller must force re-authentication.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenInvalid is returned for every other verification failure:
	// bad signature, wrong issuer, malformed claims. The caller must force
	// re-authentication, never retry silently.
	ErrTokenInvalid = errors.New("token is invalid")
)
