package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	// ErrMfaRequired marks an attempt to obtain a bearer token before the
	// TOTP step of the pending login completed.
	ErrMfaRequired = errors.New("mfa verification required")
	// ErrMfaCodeInvalid marks a well-formed login whose verification code
	// did not match. The pending marker stays usable until it expires.
	ErrMfaCodeInvalid = errors.New("mfa code invalid")
	// ErrMfaInvalid marks an unusable pending marker: unknown, expired, or
	// already consumed.
	ErrMfaInvalid = errors.New("pending login expired or invalid")
	// ErrNoEnrollment marks a provisioning request for a marker that
	// carries no enrollment secret.
	ErrNoEnrollment = errors.New("no enrollment in progress")

	// ErrTokenRevoked marks a structurally valid token that was logged out
	// before its natural expiry.
	ErrTokenRevoked = errors.New("token has been revoked")

	ErrTokenCreationFailed = errors.New("token creation failed")
)
