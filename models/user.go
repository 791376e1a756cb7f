package models

import "time"

// User represents a registered principal of the vault service.
// The server stores only verification material: an Argon2id password hash
// and, once MFA enrollment is confirmed, a base32 TOTP secret. Neither the
// master password nor any derived key is ever persisted.
type User struct {
	// UserID is the internal unique identifier of the user.
	// Not exposed via JSON; used only at the persistence layer.
	UserID int64 `json:"-"`

	// Username is the unique login identifier (email-shaped).
	Username string `json:"username"`

	// PasswordHash is the encoded Argon2id hash of the master password.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// TotpSecret is the confirmed base32 TOTP secret, empty until the user
	// completes first-time MFA verification. Write-once until explicitly
	// rotated. Never exposed via JSON.
	TotpSecret string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// MfaEnrolled reports whether the user has a confirmed TOTP secret and can
// therefore complete a full two-factor login.
func (u User) MfaEnrolled() bool {
	return u.TotpSecret != ""
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
