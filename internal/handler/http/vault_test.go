package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/service"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/internal/utils"
	"github.com/credvault/credvault/models"
)

// mockEntryService implements service.EntryService for unit tests.
type mockEntryService struct {
	getAllFn func(ctx context.Context, userID int64) ([]models.Entry, error)
	upsertFn func(ctx context.Context, entry models.Entry) (models.Entry, error)
	deleteFn func(ctx context.Context, userID int64, label string) error
}

func (m *mockEntryService) GetAll(ctx context.Context, userID int64) ([]models.Entry, error) {
	return m.getAllFn(ctx, userID)
}

func (m *mockEntryService) Upsert(ctx context.Context, entry models.Entry) (models.Entry, error) {
	return m.upsertFn(ctx, entry)
}

func (m *mockEntryService) Delete(ctx context.Context, userID int64, label string) error {
	return m.deleteFn(ctx, userID, label)
}

func newHandlerWithEntries(t *testing.T, entries service.EntryService) *Handler {
	t.Helper()
	return NewHandler(&service.Services{EntryService: entries}, logger.Nop())
}

// authedRequest builds a request whose context carries the given owner id,
// as the auth middleware would have left it.
func authedRequest(method, target string, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), utils.UserIDCtxKey, userID)
	return req.WithContext(ctx)
}

// withURLParam injects a chi route parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListEntries(t *testing.T) {
	entries := &mockEntryService{
		getAllFn: func(_ context.Context, userID int64) ([]models.Entry, error) {
			assert.Equal(t, int64(7), userID)
			return []models.Entry{
				{Label: "email", Username: "alice", Blob: "AQID"},
				{Label: "github", Username: "alice", Blob: "BAUG"},
			}, nil
		},
	}

	h := newHandlerWithEntries(t, entries)
	req := authedRequest(http.MethodGet, "/api/vault/entries", "", 7)
	rec := httptest.NewRecorder()

	h.listEntries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.EntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "email", resp.Entries[0].Label)
}

func TestListEntries_NoIdentity(t *testing.T) {
	h := newHandlerWithEntries(t, &mockEntryService{})
	req := httptest.NewRequest(http.MethodGet, "/api/vault/entries", nil)
	rec := httptest.NewRecorder()

	h.listEntries(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpsertEntry(t *testing.T) {
	entries := &mockEntryService{
		upsertFn: func(_ context.Context, entry models.Entry) (models.Entry, error) {
			assert.Equal(t, int64(7), entry.UserID)
			assert.Equal(t, "github", entry.Label)
			assert.Equal(t, "alice", entry.Username)
			entry.EntryID = 1
			return entry, nil
		},
	}

	h := newHandlerWithEntries(t, entries)
	body := jsonBody(t, models.UpsertEntryRequest{Username: "alice", Blob: "AQID"})
	req := authedRequest(http.MethodPut, "/api/vault/entries/github", body, 7)
	req = withURLParam(req, "label", "github")
	rec := httptest.NewRecorder()

	h.upsertEntry(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var saved models.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "github", saved.Label)
	assert.Equal(t, "AQID", saved.Blob)
}

func TestUpsertEntry_InvalidBody(t *testing.T) {
	entries := &mockEntryService{
		upsertFn: func(_ context.Context, _ models.Entry) (models.Entry, error) {
			return models.Entry{}, service.ErrInvalidDataProvided
		},
	}

	h := newHandlerWithEntries(t, entries)
	body := jsonBody(t, models.UpsertEntryRequest{Username: "alice"})
	req := authedRequest(http.MethodPut, "/api/vault/entries/github", body, 7)
	req = withURLParam(req, "label", "github")
	rec := httptest.NewRecorder()

	h.upsertEntry(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEntry(t *testing.T) {
	var deleted string
	entries := &mockEntryService{
		deleteFn: func(_ context.Context, userID int64, label string) error {
			assert.Equal(t, int64(7), userID)
			deleted = label
			return nil
		},
	}

	h := newHandlerWithEntries(t, entries)
	req := authedRequest(http.MethodDelete, "/api/vault/entries/github", "", 7)
	req = withURLParam(req, "label", "github")
	rec := httptest.NewRecorder()

	h.deleteEntry(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "github", deleted)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	entries := &mockEntryService{
		deleteFn: func(_ context.Context, _ int64, _ string) error {
			return store.ErrEntryNotFound
		},
	}

	h := newHandlerWithEntries(t, entries)
	req := authedRequest(http.MethodDelete, "/api/vault/entries/ghost", "", 7)
	req = withURLParam(req, "label", "ghost")
	rec := httptest.NewRecorder()

	h.deleteEntry(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
