// Package vault implements the client-side vault session: a state machine
// that owns the unlocked key material, orchestrates bulk encrypt/decrypt of
// entries, and re-locks on any distrust signal. The session is an explicit
// value handed to one caller at a time; there is no ambient singleton.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/credvault/credvault/internal/crypto"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/models"
)

// State is the lifecycle phase of a [Session].
type State int

const (
	Locked State = iota
	Unlocking
	Unlocked
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Unlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// Session owns the volatile vault key material for one principal. All
// methods are safe for concurrent use; unlock attempts are serialized and
// a Lock supersedes any in-flight operation — results computed after the
// lock are discarded, not surfaced.
type Session struct {
	ownerID int64
	codec   crypto.EnvelopeCodec
	store   StoreAdapter
	logger  *logger.Logger

	mu    sync.Mutex
	state State

	// generation increments on every Lock. In-flight operations capture the
	// value at start and discard their result when it has moved on.
	generation uint64

	// password is the validated master password, held only while Unlocked.
	password string

	// keyCache memoizes per-salt derived keys for the current session.
	keyCache *crypto.KeyCache
}

// NewSession constructs a Locked session for the given owner.
func NewSession(ownerID int64, codec crypto.EnvelopeCodec, store StoreAdapter, log *logger.Logger) *Session {
	return &Session{
		ownerID: ownerID,
		codec:   codec,
		store:   store,
		logger:  log,
		state:   Locked,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Unlock validates candidate against the stored vault and, on success,
// transitions to Unlocked with the password cached in memory.
//
// An empty vault accepts any non-empty candidate (first-use bootstrap).
// A non-empty vault is probed by attempting to decrypt one stored blob;
// a failed probe leaves the session Locked and returns
// ErrWrongMasterPassword.
//
// Unlock calls are serialized: a second call while one is deriving gets
// ErrUnlockInProgress instead of racing. A Lock issued while the probe is
// running wins — the completed unlock is discarded.
func (s *Session) Unlock(ctx context.Context, candidate string) error {
	if candidate == "" {
		return fmt.Errorf("%w: empty master password", ErrInvalidEntry)
	}

	s.mu.Lock()
	switch s.state {
	case Unlocking:
		s.mu.Unlock()
		return ErrUnlockInProgress
	case Unlocked:
		s.mu.Unlock()
		return nil
	}
	s.state = Unlocking
	gen := s.generation
	s.mu.Unlock()

	entries, err := s.store.GetAll(ctx, s.ownerID)
	if err != nil {
		s.failUnlock(gen)
		return fmt.Errorf("fetching vault entries: %w", err)
	}

	// Probe the candidate against one stored blob. The expensive derivation
	// runs outside the session lock so Lock stays immediate.
	if len(entries) > 0 && !s.codec.Validate(entries[0].Blob, candidate) {
		s.failUnlock(gen)
		return ErrWrongMasterPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// Locked (or re-locked) while we were deriving; discard the result.
		return ErrLocked
	}
	s.state = Unlocked
	s.password = candidate
	s.keyCache = crypto.NewKeyCache()

	s.logger.Debug().Int64("owner_id", s.ownerID).Msg("vault unlocked")
	return nil
}

// failUnlock returns the session to Locked after an unsuccessful probe,
// unless a concurrent Lock already moved the generation on.
func (s *Session) failUnlock(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && s.state == Unlocking {
		s.state = Locked
	}
}

// AddOrUpdate encrypts plaintext and upserts the entry under label. Valid
// only in the Unlocked state. Each call produces a fresh salt and nonce.
func (s *Session) AddOrUpdate(ctx context.Context, label, username, plaintext string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidEntry)
	}

	password, gen, err := s.snapshot()
	if err != nil {
		return err
	}

	blob, err := s.codec.Encrypt(plaintext, password)
	if err != nil {
		return fmt.Errorf("encrypting entry %q: %w", label, err)
	}

	if err := s.discardIfSuperseded(gen); err != nil {
		return err
	}

	entry := models.Entry{Label: label, Username: username, Blob: blob}
	if err := s.store.Upsert(ctx, s.ownerID, entry); err != nil {
		return fmt.Errorf("storing entry %q: %w", label, err)
	}

	return nil
}

// ListDecrypted fetches and decrypts every stored entry. Any authentication
// failure locks the vault and returns ErrVaultIntegrity — partial plaintext
// is never surfaced by this method. Use ListDecryptedPartial for the
// per-item skip-corrupt policy.
func (s *Session) ListDecrypted(ctx context.Context) ([]DecryptedEntry, error) {
	outcomes, err := s.listOutcomes(ctx)
	if err != nil {
		return nil, err
	}

	decrypted := make([]DecryptedEntry, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			s.Lock()
			s.logger.Warn().Str("label", o.Entry.Label).Msg("vault locked: entry failed authentication")
			return nil, ErrVaultIntegrity
		}
		decrypted = append(decrypted, o.Entry)
	}

	return decrypted, nil
}

// ListDecryptedPartial fetches and decrypts every stored entry, reporting
// failures per item instead of aborting. Ordering matches the store. The
// session stays Unlocked; reacting to a corrupt row is the caller's policy
// decision.
func (s *Session) ListDecryptedPartial(ctx context.Context) ([]EntryOutcome, error) {
	return s.listOutcomes(ctx)
}

func (s *Session) listOutcomes(ctx context.Context) ([]EntryOutcome, error) {
	password, gen, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	entries, err := s.store.GetAll(ctx, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetching vault entries: %w", err)
	}

	s.mu.Lock()
	cache := s.keyCache
	s.mu.Unlock()
	if cache == nil {
		return nil, ErrLocked
	}

	outcomes := make([]EntryOutcome, 0, len(entries))
	for _, entry := range entries {
		plaintext, decErr := s.codec.DecryptWithCache(entry.Blob, password, cache)
		outcomes = append(outcomes, EntryOutcome{
			Entry: DecryptedEntry{Label: entry.Label, Username: entry.Username, Password: plaintext},
			Err:   decErr,
		})
	}

	if err := s.discardIfSuperseded(gen); err != nil {
		return nil, err
	}

	return outcomes, nil
}

// Delete removes the entry under label. No cryptographic material is
// involved, but the vault must still be Unlocked to mutate it.
func (s *Session) Delete(ctx context.Context, label string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidEntry)
	}

	if _, _, err := s.snapshot(); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, s.ownerID, label); err != nil {
		return fmt.Errorf("deleting entry %q: %w", label, err)
	}

	return nil
}

// Lock discards the cached key material immediately. Always safe to call,
// in any state; it never waits for in-flight operations, whose results are
// discarded via the generation counter.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = Locked
	s.password = ""
	if s.keyCache != nil {
		s.keyCache.Wipe()
		s.keyCache = nil
	}
}

// snapshot returns the cached password and current generation, or ErrLocked
// when the session is not Unlocked.
func (s *Session) snapshot() (string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unlocked {
		return "", 0, ErrLocked
	}
	return s.password, s.generation, nil
}

// discardIfSuperseded reports ErrLocked when the generation moved on while
// the caller was doing work, so stale results never reach the caller.
func (s *Session) discardIfSuperseded(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return ErrLocked
	}
	return nil
}
