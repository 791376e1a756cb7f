package vault

import (
	"context"

	"github.com/credvault/credvault/models"
)

// StoreAdapter is the narrow persistence interface the session depends on.
// It is pure CRUD over opaque blobs keyed by (owner, label) and has no
// cryptographic awareness. The HTTP client adapter implements it against
// the server; tests implement it in memory.
type StoreAdapter interface {
	GetAll(ctx context.Context, ownerID int64) ([]models.Entry, error)
	Upsert(ctx context.Context, ownerID int64, entry models.Entry) error
	Delete(ctx context.Context, ownerID int64, label string) error
}

// DecryptedEntry is a vault entry with its password recovered to plaintext.
// It exists only in process memory and is never serialized.
type DecryptedEntry struct {
	Label    string
	Username string
	Password string
}

// EntryOutcome is a per-item result of the partial (skip-corrupt) listing.
// Exactly one of Entry and Err is meaningful.
type EntryOutcome struct {
	Entry DecryptedEntry
	Err   error
}
