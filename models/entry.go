package models

import "time"

// Entry is a single stored credential: an application label, the username
// used with that application, and the encrypted password blob produced by
// the envelope codec. The server treats Blob as opaque bytes; it is never
// decrypted or inspected server-side.
type Entry struct {
	// EntryID is the internal unique identifier of the entry.
	EntryID int64 `json:"-"`

	// UserID is the owner of the entry. Filled from the bearer token on the
	// server; clients never supply it.
	UserID int64 `json:"-"`

	// Label is the application name. Non-empty, unique per owner.
	Label string `json:"label"`

	// Username is the free-text account name used with the application.
	Username string `json:"username"`

	// Blob is the base64-rendered envelope: version ‖ salt ‖ nonce ‖
	// ciphertext‖tag. Always ciphertext, never plaintext.
	Blob string `json:"blob"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// TableName returns the name of the database table
// associated with the Entry model.
func (e Entry) TableName() string {
	return "entries"
}
