package crypto

// KeyService derives symmetric keys and password-verification hashes from a
// master password. It knows nothing about the network, the database, or
// users; its only job is turning low-entropy secrets into keys.
//
// Two distinct primitives are used on purpose:
//
//	vault key   = Argon2id(password, salt)          (client-side, in memory only)
//	stored hash = Argon2id(password, random salt)   (server-side, encoded string)
//
// Both are deliberately slow to resist offline guessing.
type KeyService interface {
	// DeriveKey derives a 256-bit symmetric key from the master password and
	// a 16-byte salt. Deterministic for a fixed (password, salt) pair.
	// Rejects empty passwords and malformed salts with ErrInvalidInput
	// before any derivation work begins.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// GenerateSalt returns a fresh 16-byte random salt from the OS CSPRNG.
	GenerateSalt() ([]byte, error)

	// HashPassword produces a self-describing encoded Argon2id hash
	// ($argon2id$v=...$...) suitable for at-rest storage.
	HashPassword(password string) (string, error)

	// VerifyPassword checks candidate against an encoded hash produced by
	// HashPassword using a constant-time comparison. A malformed encoded
	// hash yields ErrInvalidInput.
	VerifyPassword(encoded, candidate string) (bool, error)
}

// EnvelopeCodec encrypts and decrypts single plaintext fields into
// self-contained opaque blobs. Each blob carries everything needed for
// decryption except the password:
//
//	version(1) ‖ salt(16) ‖ nonce(12) ‖ ciphertext‖tag, base64-rendered.
//
// Every Encrypt call draws a fresh salt and nonce, so identical plaintexts
// under the same password never produce identical blobs.
type EnvelopeCodec interface {
	// Encrypt seals plaintext under a key derived from password.
	Encrypt(plaintext, password string) (string, error)

	// EncryptWithKey seals plaintext with an already-derived key and its
	// originating salt, skipping the expensive derivation. Used by the vault
	// session to reuse cached key material.
	EncryptWithKey(plaintext string, key, salt []byte) (string, error)

	// Decrypt opens a blob. Returns ErrInvalidBlob for structurally broken
	// input and ErrAuthenticationFailed when the tag does not verify.
	Decrypt(blob, password string) (string, error)

	// DecryptWithCache behaves like Decrypt but consults and populates the
	// provided KeyCache, so repeated blobs sealed under the same salt cost
	// one derivation instead of many.
	DecryptWithCache(blob, password string, cache *KeyCache) (string, error)

	// Validate reports whether the blob decrypts under password without
	// surfacing an error. Used to probe a candidate master password.
	Validate(blob, password string) bool

	// EncryptAll seals a batch of items, preserving order and labels.
	EncryptAll(items []EntryPlain, password string) ([]EntryCipher, error)

	// DecryptAll opens a batch of items, preserving order and labels.
	// A single item's authentication failure never aborts the batch; the
	// failure is reported per item in the result.
	DecryptAll(items []EntryCipher, password string) []EntryResult
}

// EntryPlain is a single batch-encryption input.
type EntryPlain struct {
	Label     string
	Plaintext string
}

// EntryCipher is a single sealed batch item.
type EntryCipher struct {
	Label string
	Blob  string
}

// EntryResult is a single batch-decryption outcome. Exactly one of
// Plaintext and Err is meaningful.
type EntryResult struct {
	Label     string
	Plaintext string
	Err       error
}
