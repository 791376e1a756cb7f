package vault

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credvault/credvault/internal/crypto"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/models"
)

// memStore is an in-memory StoreAdapter for session tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]models.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]models.Entry)}
}

func (m *memStore) GetAll(_ context.Context, _ int64) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, _ int64, entry models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Label] = entry
	return nil
}

func (m *memStore) Delete(_ context.Context, _ int64, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, label)
	return nil
}

func (m *memStore) corrupt(t *testing.T, label string) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[label]
	require.True(t, ok, "entry %q not found", label)
	raw, err := base64.StdEncoding.DecodeString(e.Blob)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	e.Blob = base64.StdEncoding.EncodeToString(raw)
	m.entries[label] = e
}

func newTestSession(store StoreAdapter) *Session {
	codec := crypto.NewEnvelopeCodec(crypto.NewKeyService())
	return NewSession(7, codec, store, logger.Nop())
}

func TestUnlock_EmptyVaultBootstraps(t *testing.T) {
	s := newTestSession(newMemStore())

	require.NoError(t, s.Unlock(context.Background(), "p1"))
	assert.Equal(t, Unlocked, s.State())
}

func TestUnlock_RejectsEmptyPassword(t *testing.T) {
	s := newTestSession(newMemStore())

	err := s.Unlock(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Equal(t, Locked, s.State())
}

func TestLifecycle_AddLockUnlockList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newTestSession(store)

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.AddOrUpdate(ctx, "GitHub", "alice", "g-pass"))

	s.Lock()
	assert.Equal(t, Locked, s.State())

	require.NoError(t, s.Unlock(ctx, "p1"))

	entries, err := s.ListDecrypted(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GitHub", entries[0].Label)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "g-pass", entries[0].Password)
}

func TestUnlock_WrongPasswordAgainstNonEmptyVault(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newMemStore())

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.AddOrUpdate(ctx, "GitHub", "alice", "g-pass"))
	s.Lock()

	err := s.Unlock(ctx, "wrong")
	assert.ErrorIs(t, err, ErrWrongMasterPassword)
	assert.Equal(t, Locked, s.State())
}

func TestOperations_RequireUnlocked(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newMemStore())

	assert.ErrorIs(t, s.AddOrUpdate(ctx, "L", "u", "p"), ErrLocked)

	_, err := s.ListDecrypted(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	assert.ErrorIs(t, s.Delete(ctx, "L"), ErrLocked)
}

func TestListDecrypted_CorruptEntryLocksVault(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newTestSession(store)

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.AddOrUpdate(ctx, "A", "u1", "pw-a"))
	require.NoError(t, s.AddOrUpdate(ctx, "B", "u2", "pw-b"))

	store.corrupt(t, "B")

	_, err := s.ListDecrypted(ctx)
	assert.ErrorIs(t, err, ErrVaultIntegrity)
	assert.Equal(t, Locked, s.State(), "session must lock itself on authentication failure")
}

func TestListDecryptedPartial_SkipsCorruptRow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newTestSession(store)

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.AddOrUpdate(ctx, "A", "u1", "pw-a"))
	require.NoError(t, s.AddOrUpdate(ctx, "B", "u2", "pw-b"))
	require.NoError(t, s.AddOrUpdate(ctx, "C", "u3", "pw-c"))

	store.corrupt(t, "B")

	outcomes, err := s.ListDecryptedPartial(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	var failed, succeeded int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.ErrorIs(t, o.Err, crypto.ErrAuthenticationFailed)
			assert.Equal(t, "B", o.Entry.Label)
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, Unlocked, s.State(), "partial listing leaves the policy choice to the caller")
}

func TestDelete_RemovesEntry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	s := newTestSession(store)

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.AddOrUpdate(ctx, "GitHub", "alice", "g-pass"))
	require.NoError(t, s.Delete(ctx, "GitHub"))

	entries, err := s.ListDecrypted(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnlock_IdempotentWhenUnlocked(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(newMemStore())

	require.NoError(t, s.Unlock(ctx, "p1"))
	require.NoError(t, s.Unlock(ctx, "anything"), "second unlock on an unlocked session is a no-op")
	assert.Equal(t, Unlocked, s.State())
}

func TestLock_AlwaysSafe(t *testing.T) {
	s := newTestSession(newMemStore())

	s.Lock()
	s.Lock()
	assert.Equal(t, Locked, s.State())
}

// blockingStore parks GetAll until released, to exercise supersession.
type blockingStore struct {
	*memStore
	enter   chan struct{}
	release chan struct{}
}

func (b *blockingStore) GetAll(ctx context.Context, ownerID int64) ([]models.Entry, error) {
	b.enter <- struct{}{}
	<-b.release
	return b.memStore.GetAll(ctx, ownerID)
}

func TestLock_SupersedesInFlightUnlock(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		memStore: newMemStore(),
		enter:    make(chan struct{}),
		release:  make(chan struct{}),
	}
	s := newTestSession(store)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Unlock(ctx, "p1") }()

	<-store.enter // unlock is now in flight
	s.Lock()      // supersede it
	close(store.release)

	err := <-errCh
	assert.ErrorIs(t, err, ErrLocked, "in-flight unlock completed after Lock must be discarded")
	assert.Equal(t, Locked, s.State())
}

func TestUnlock_SerializedNotRaced(t *testing.T) {
	ctx := context.Background()
	store := &blockingStore{
		memStore: newMemStore(),
		enter:    make(chan struct{}),
		release:  make(chan struct{}),
	}
	s := newTestSession(store)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Unlock(ctx, "p1") }()
	<-store.enter

	err := s.Unlock(ctx, "p1")
	assert.ErrorIs(t, err, ErrUnlockInProgress)

	close(store.release)
	require.NoError(t, <-errCh)
	assert.Equal(t, Unlocked, s.State())
}
