package store

import (
	"context"
	"time"

	"github.com/credvault/credvault/models"
)

// UserRepository persists principals: username, Argon2id password hash, and
// the confirmed TOTP secret. It has no cryptographic awareness beyond
// storing the opaque values it is given.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// SetTotpSecret persists a confirmed secret. force must be true to
	// replace an existing secret (explicit rotation); otherwise an already
	// enrolled user yields ErrTotpAlreadySet.
	SetTotpSecret(ctx context.Context, userID int64, secret string, force bool) error
}

// EntryRepository persists opaque vault blobs keyed by (owner, label).
// Pure CRUD; the blob is never inspected.
type EntryRepository interface {
	GetAll(ctx context.Context, userID int64) ([]models.Entry, error)
	Upsert(ctx context.Context, entry models.Entry) (models.Entry, error)
	Delete(ctx context.Context, userID int64, label string) error
}

// DenyListRepository records fingerprints of bearer tokens revoked before
// their natural expiry (logout). Expired rows are purged by the janitor.
type DenyListRepository interface {
	Add(ctx context.Context, fingerprint string, expiresAt time.Time) error
	Contains(ctx context.Context, fingerprint string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// PendingLogin is the short-lived record linking a password-verified
// attempt to its still-unfinished MFA step. EnrollSecret is set only for
// first-time enrollment; it is the unconfirmed secret that must never reach
// a persisted, usable state before verification succeeds.
type PendingLogin struct {
	ID           string
	UserID       int64
	EnrollSecret string
	// Rotate marks a secret-rotation marker: on confirmation the stored
	// secret is replaced instead of written once.
	Rotate    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PendingLoginStore holds pending-login markers between the password step
// and the TOTP step. Markers expire so an abandoned partial login cannot be
// completed later, and are consumed exactly once.
type PendingLoginStore interface {
	Put(ctx context.Context, pending PendingLogin) (PendingLogin, error)
	Get(ctx context.Context, id string) (PendingLogin, error)
	Consume(ctx context.Context, id string) (PendingLogin, error)
	PurgeExpired(ctx context.Context, now time.Time) int
}
