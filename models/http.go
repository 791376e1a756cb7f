package models

import "time"

// Wire DTOs exchanged between the client adapter and the HTTP handlers.
// Past the login boundary the wire format carries only opaque blobs,
// never plaintext credentials.

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login (the password step).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful password step. No bearer
// token is present: the client must complete the TOTP step first.
//
// TotpSecret and TotpURI are set only on first login, when MFA is not yet
// enrolled; the secret is displayed once for authenticator provisioning and
// is not persisted server-side until the first code verifies.
type LoginResponse struct {
	PendingMarker string    `json:"pending_marker"`
	ExpiresAt     time.Time `json:"expires_at"`
	TotpSecret    string    `json:"totp_secret,omitempty"`
	TotpURI       string    `json:"totp_uri,omitempty"`
}

// TotpVerifyRequest is the body of POST /api/auth/totp (the MFA step).
type TotpVerifyRequest struct {
	PendingMarker string `json:"pending_marker"`
	Code          string `json:"code"`
}

// TokenResponse is returned once both factors verified for the same
// pending login.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TotpRotateRequest is the body of POST /api/auth/totp/rotate. The caller
// must present a code valid for the current secret before a replacement
// secret is provisioned.
type TotpRotateRequest struct {
	Code string `json:"code"`
}

// UpsertEntryRequest is the body of PUT /api/vault/entries/{label}.
type UpsertEntryRequest struct {
	Username string `json:"username"`
	Blob     string `json:"blob"`
}

// EntriesResponse is the body of GET /api/vault/entries.
type EntriesResponse struct {
	Entries []Entry `json:"entries"`
}

// ErrorResponse is the uniform error body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
