package service

import (
	"context"
	"time"

	"github.com/credvault/credvault/models"
)

// LoginChallenge is handed back after a successful password step (or a
// confirmed rotation request). It never contains a bearer token: the caller
// must complete TOTP verification against the pending marker first.
//
// TotpSecret and TotpURI are set only when this challenge starts an
// enrollment; the secret is shown once and is not persisted server-side
// until the first code verifies.
type LoginChallenge struct {
	PendingMarker string
	ExpiresAt     time.Time
	TotpSecret    string
	TotpURI       string
}

// AuthService implements the session gate: password verification, TOTP
// enrollment and verification, bearer-token lifecycle, and revocation.
// Password verification alone never yields a token.
type AuthService interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	BeginLogin(ctx context.Context, username, password string) (LoginChallenge, error)
	CompleteLogin(ctx context.Context, markerID, code string) (models.Token, error)
	RotateTotp(ctx context.Context, userID int64, code string) (LoginChallenge, error)

	// EnrollmentURI returns the provisioning URI for the enrollment held by
	// the given pending marker, for QR rendering. The marker is not consumed.
	EnrollmentURI(ctx context.Context, markerID string) (string, error)

	Logout(ctx context.Context, token models.Token) error
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// EntryService validates and persists opaque vault entries on behalf of an
// authenticated owner. Blobs pass through untouched; the server never holds
// key material for them.
type EntryService interface {
	GetAll(ctx context.Context, userID int64) ([]models.Entry, error)
	Upsert(ctx context.Context, entry models.Entry) (models.Entry, error)
	Delete(ctx context.Context, userID int64, label string) error
}
