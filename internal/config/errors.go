package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrMissingTokenSignKey indicates the token signing secret was not
	// configured. The server must not start without it.
	ErrMissingTokenSignKey = errors.New("token signing key is not configured")
	// ErrMissingHashKey indicates the deny-list fingerprint key was not
	// configured.
	ErrMissingHashKey = errors.New("hash key is not configured")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing HTTP address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
)
