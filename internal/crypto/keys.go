package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltLength is the fixed envelope and password-hash salt size.
	SaltLength = 16

	// KeyLength is the derived symmetric key size (AES-256).
	KeyLength = 32
)

// keyService is the private implementation of [KeyService].
type keyService struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyService constructs a [KeyService] with the Argon2id parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyService() KeyService {
	return &keyService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  KeyLength,
	}
}

// GenerateSalt implements [KeyService]. It reads 16 random bytes from the
// OS CSPRNG. Returns an error if the random read fails.
func (k *keyService) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey implements [KeyService]. It derives a 256-bit vault key from
// the master password and salt using Argon2id with the parameters stored in
// the receiver. The result exists only in client memory and is never
// transmitted to the server.
//
// Input is validated before any derivation work begins so that malformed
// calls do not pay the memory-hard cost.
func (k *keyService) DeriveKey(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidInput)
	}
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("%w: salt length %d, want %d", ErrInvalidInput, len(salt), SaltLength)
	}

	return argon2.IDKey(
		[]byte(password),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	), nil
}

// HashPassword implements [KeyService]. It hashes password with Argon2id
// under a fresh random salt and encodes the result in the standard
// self-describing format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<b64 salt>$<b64 hash>
//
// The encoding carries the parameters so hashes remain verifiable after the
// defaults change.
func (k *keyService) HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", ErrInvalidInput)
	}

	salt, err := k.GenerateSalt()
	if err != nil {
		return "", fmt.Errorf("generate password salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, k.argonTime, k.argonMemory, k.argonThreads, k.argonKeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		k.argonMemory,
		k.argonTime,
		k.argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)
	return encoded, nil
}

// VerifyPassword implements [KeyService]. It re-derives the hash of
// candidate using the parameters embedded in encoded and compares the two
// digests with [subtle.ConstantTimeCompare].
//
// Returns (false, nil) for a wrong password and a non-nil error only when
// the encoded hash itself cannot be parsed.
func (k *keyService) VerifyPassword(encoded, candidate string) (bool, error) {
	params, salt, sum, err := decodePasswordHash(encoded)
	if err != nil {
		return false, err
	}

	candidateSum := argon2.IDKey([]byte(candidate), salt, params.time, params.memory, params.threads, uint32(len(sum)))

	return subtle.ConstantTimeCompare(sum, candidateSum) == 1, nil
}

// argonParams are the tuning values recovered from an encoded hash string.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodePasswordHash splits an encoded Argon2id hash into its parameters,
// salt, and digest. Any structural problem yields ErrInvalidInput.
func decodePasswordHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: malformed password hash", ErrInvalidInput)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported argon2 version", ErrInvalidInput)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: malformed argon2 parameters", ErrInvalidInput)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: malformed salt encoding", ErrInvalidInput)
	}

	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: malformed digest encoding", ErrInvalidInput)
	}

	return p, salt, sum, nil
}
