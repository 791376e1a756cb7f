package vault

import "errors"

var (
	// ErrLocked is returned when an operation that needs an unlocked vault
	// is called in the Locked state.
	ErrLocked = errors.New("vault is locked")

	// ErrUnlockInProgress is returned when a second unlock attempt arrives
	// while a previous one is still deriving. Unlock calls are serialized,
	// never raced.
	ErrUnlockInProgress = errors.New("unlock already in progress")

	// ErrWrongMasterPassword is returned when the candidate password fails
	// validation against the stored blobs. The vault stays Locked.
	ErrWrongMasterPassword = errors.New("wrong master password")

	// ErrVaultIntegrity is returned when decrypting stored entries hits an
	// authentication failure mid-listing. The vault locks itself; no partial
	// plaintext is surfaced.
	ErrVaultIntegrity = errors.New("vault integrity or password error")

	// ErrInvalidEntry is returned when an entry operation is given an empty
	// label or plaintext that cannot be stored.
	ErrInvalidEntry = errors.New("invalid vault entry")
)
