// Package adapter provides transport-layer abstractions for communicating
// with the vault server.
//
// The primary abstraction is [ServerAdapter], which decouples the client
// session from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/credvault/credvault/models"
)

// ServerAdapter defines transport-agnostic communication with the vault
// server. Implementations are responsible for serialisation, bearer-token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// The entry methods satisfy the session store interface: the owner id
// parameter is accepted for interface compatibility but ignored on the
// wire, because the server derives the owner from the bearer token.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests. CompleteLogin calls it automatically on
	// success.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Register creates a new account. No token is returned: a fresh account
	// still has to walk the full two-step login.
	Register(ctx context.Context, username, password string) error

	// BeginLogin performs the password step. On success the server returns a
	// pending marker, and on first login the one-time enrollment secret and
	// provisioning URI.
	BeginLogin(ctx context.Context, username, password string) (models.LoginResponse, error)

	// CompleteLogin performs the TOTP step for a pending marker. On success
	// it stores the returned bearer token via SetToken.
	CompleteLogin(ctx context.Context, marker, code string) (models.TokenResponse, error)

	// RotateTotp provisions a replacement TOTP secret. The caller must
	// present a code valid for the current secret; the replacement takes
	// effect only after CompleteLogin confirms it.
	RotateTotp(ctx context.Context, code string) (models.LoginResponse, error)

	// Logout revokes the current bearer token server-side and clears it
	// from the adapter.
	Logout(ctx context.Context) error

	// GetAll fetches every stored entry of the authenticated user. Blobs
	// come back encrypted exactly as they were uploaded.
	GetAll(ctx context.Context, ownerID int64) ([]models.Entry, error)

	// Upsert creates or replaces the entry under entry.Label.
	Upsert(ctx context.Context, ownerID int64, entry models.Entry) error

	// Delete removes the entry under label. Returns [ErrNotFound] (wrapped)
	// if no such entry exists.
	Delete(ctx context.Context, ownerID int64, label string) error
}
