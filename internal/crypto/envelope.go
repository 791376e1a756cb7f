package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
)

const (
	// envelopeVersion is the current tagged format. The version byte is
	// explicit in the blob so the layout is never inferred by string shape.
	envelopeVersion byte = 0x01

	nonceLength = 12

	// headerLength is version + salt + nonce; everything after is
	// ciphertext‖tag.
	headerLength = 1 + SaltLength + nonceLength
)

// envelopeCodec is the private implementation of [EnvelopeCodec]. It owns
// no state beyond the key service used for derivation.
type envelopeCodec struct {
	keys KeyService
}

// NewEnvelopeCodec constructs an [EnvelopeCodec] deriving keys via keys.
func NewEnvelopeCodec(keys KeyService) EnvelopeCodec {
	return &envelopeCodec{keys: keys}
}

// Encrypt implements [EnvelopeCodec]. A fresh salt and nonce are drawn per
// call, the key is derived via the key service, and the plaintext is sealed
// with AES-256-GCM. The result is base64(version ‖ salt ‖ nonce ‖ ct‖tag).
func (c *envelopeCodec) Encrypt(plaintext, password string) (string, error) {
	salt, err := c.keys.GenerateSalt()
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := c.keys.DeriveKey(password, salt)
	if err != nil {
		return "", err
	}

	return seal(plaintext, key, salt)
}

// EncryptWithKey implements [EnvelopeCodec]. The caller supplies the
// derived key together with the salt it was derived from; only the nonce is
// fresh per call. Used by the vault session to avoid re-deriving on every
// entry write.
func (c *envelopeCodec) EncryptWithKey(plaintext string, key, salt []byte) (string, error) {
	if len(key) != KeyLength {
		return "", fmt.Errorf("%w: key length %d, want %d", ErrInvalidInput, len(key), KeyLength)
	}
	if len(salt) != SaltLength {
		return "", fmt.Errorf("%w: salt length %d, want %d", ErrInvalidInput, len(salt), SaltLength)
	}
	return seal(plaintext, key, salt)
}

// seal performs the AEAD encryption shared by Encrypt and EncryptWithKey.
func seal(plaintext string, key, salt []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// blob = version || salt || nonce || ciphertext
	blob := make([]byte, 0, headerLength+len(plaintext)+gcm.Overhead())
	blob = append(blob, envelopeVersion)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt implements [EnvelopeCodec].
func (c *envelopeCodec) Decrypt(blob, password string) (string, error) {
	return c.DecryptWithCache(blob, password, nil)
}

// DecryptWithCache implements [EnvelopeCodec]. When cache is non-nil the
// per-salt derived key is looked up before paying for a derivation and
// stored afterwards.
func (c *envelopeCodec) DecryptWithCache(blob, password string, cache *KeyCache) (string, error) {
	salt, nonce, ciphertext, err := splitBlob(blob)
	if err != nil {
		return "", err
	}

	var key []byte
	if cache != nil {
		key = cache.get(salt)
	}
	if key == nil {
		key, err = c.keys.DeriveKey(password, salt)
		if err != nil {
			return "", err
		}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Tag mismatch: wrong password or tampered data. Callers get one
		// undifferentiated error for both.
		return "", ErrAuthenticationFailed
	}

	if cache != nil {
		cache.put(salt, key)
	}

	return string(plaintext), nil
}

// Validate implements [EnvelopeCodec].
func (c *envelopeCodec) Validate(blob, password string) bool {
	_, err := c.Decrypt(blob, password)
	return err == nil
}

// EncryptAll implements [EnvelopeCodec]. Item ordering and labels are
// preserved. The whole batch shares one (salt, key) pair so the expensive
// derivation is paid once; each item still gets its own nonce.
func (c *envelopeCodec) EncryptAll(items []EntryPlain, password string) ([]EntryCipher, error) {
	salt, err := c.keys.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key, err := c.keys.DeriveKey(password, salt)
	if err != nil {
		return nil, err
	}

	sealed := make([]EntryCipher, 0, len(items))
	for _, item := range items {
		blob, err := seal(item.Plaintext, key, salt)
		if err != nil {
			return nil, fmt.Errorf("encrypt %q: %w", item.Label, err)
		}
		sealed = append(sealed, EntryCipher{Label: item.Label, Blob: blob})
	}

	return sealed, nil
}

// DecryptAll implements [EnvelopeCodec]. One item failing authentication
// never aborts the batch; the failure is recorded in that item's result and
// the remaining items are still processed.
func (c *envelopeCodec) DecryptAll(items []EntryCipher, password string) []EntryResult {
	cache := NewKeyCache()

	results := make([]EntryResult, 0, len(items))
	for _, item := range items {
		plaintext, err := c.DecryptWithCache(item.Blob, password, cache)
		results = append(results, EntryResult{Label: item.Label, Plaintext: plaintext, Err: err})
	}

	return results
}

// splitBlob decodes and dissects an envelope blob into its parts. Any
// structural problem — bad base64, short blob, unknown version — yields
// ErrInvalidBlob, never ErrAuthenticationFailed.
func splitBlob(blob string) (salt, nonce, ciphertext []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: bad base64", ErrInvalidBlob)
	}
	if len(raw) < headerLength {
		return nil, nil, nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrInvalidBlob, len(raw), headerLength)
	}
	if raw[0] != envelopeVersion {
		return nil, nil, nil, fmt.Errorf("%w: unknown version 0x%02x", ErrInvalidBlob, raw[0])
	}

	salt = raw[1 : 1+SaltLength]
	nonce = raw[1+SaltLength : headerLength]
	ciphertext = raw[headerLength:]
	return salt, nonce, ciphertext, nil
}

// KeyCache memoizes derived keys by salt so that decrypting many blobs
// sealed under the same salt costs one Argon2id derivation. Safe for
// concurrent use. Wipe discards all cached material.
type KeyCache struct {
	mu   sync.Mutex
	keys map[[SaltLength]byte][]byte
}

// NewKeyCache returns an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{keys: make(map[[SaltLength]byte][]byte)}
}

func (kc *KeyCache) get(salt []byte) []byte {
	var k [SaltLength]byte
	copy(k[:], salt)

	kc.mu.Lock()
	defer kc.mu.Unlock()
	return kc.keys[k]
}

func (kc *KeyCache) put(salt, key []byte) {
	var k [SaltLength]byte
	copy(k[:], salt)

	kc.mu.Lock()
	defer kc.mu.Unlock()
	kc.keys[k] = key
}

// Wipe zeroes every cached key and empties the cache.
func (kc *KeyCache) Wipe() {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	for _, key := range kc.keys {
		for i := range key {
			key[i] = 0
		}
	}
	kc.keys = make(map[[SaltLength]byte][]byte)
}
