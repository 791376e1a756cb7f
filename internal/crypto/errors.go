package crypto

import "errors"

var (
	// ErrInvalidInput is returned when a derivation or encryption call is
	// rejected before any expensive work begins: empty password, wrong salt
	// length, or empty plaintext label in a batch item.
	ErrInvalidInput = errors.New("invalid cryptographic input")

	// ErrInvalidBlob is returned when an envelope blob cannot be parsed at
	// all: bad base64, unknown version byte, or fewer bytes than the fixed
	// header requires. Distinct from ErrAuthenticationFailed so callers can
	// tell "malformed data" from "wrong password or tampering".
	ErrInvalidBlob = errors.New("malformed envelope blob")

	// ErrAuthenticationFailed is returned when the AEAD tag does not verify.
	// It deliberately does not distinguish a wrong master password from a
	// tampered or corrupted ciphertext, to avoid acting as an oracle.
	ErrAuthenticationFailed = errors.New("authentication failed")
)
