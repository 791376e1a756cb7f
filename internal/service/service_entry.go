package service

import (
	"context"
	"fmt"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/models"
)

const labelMaxLength = 255

// entryService is the concrete implementation of [EntryService]. The server
// side of the vault is deliberately dumb: it validates shape, scopes every
// operation to the owner from the verified token, and stores blobs it can
// never read.
type entryService struct {
	entries store.EntryRepository
	logger  *logger.Logger
}

// NewEntryService constructs an [EntryService] backed by the given
// repository.
func NewEntryService(entries store.EntryRepository, logger *logger.Logger) EntryService {
	return &entryService{
		entries: entries,
		logger:  logger,
	}
}

// GetAll returns every entry owned by userID, blobs still sealed.
func (s *entryService) GetAll(ctx context.Context, userID int64) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	if userID == 0 {
		return nil, ErrInvalidDataProvided
	}

	entries, err := s.entries.GetAll(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("listing vault entries failed")
		return nil, fmt.Errorf("listing vault entries failed: %w", err)
	}

	return entries, nil
}

// Upsert creates or replaces the entry under (owner, label).
func (s *entryService) Upsert(ctx context.Context, entry models.Entry) (models.Entry, error) {
	log := logger.FromContext(ctx)

	if entry.UserID == 0 || entry.Label == "" || len(entry.Label) > labelMaxLength || entry.Blob == "" {
		return models.Entry{}, ErrInvalidDataProvided
	}

	saved, err := s.entries.Upsert(ctx, entry)
	if err != nil {
		log.Err(err).Int64("user_id", entry.UserID).Str("label", entry.Label).Msg("upserting vault entry failed")
		return models.Entry{}, fmt.Errorf("upserting vault entry failed: %w", err)
	}

	return saved, nil
}

// Delete removes the entry under (owner, label); store.ErrEntryNotFound
// passes through for the transport layer to map.
func (s *entryService) Delete(ctx context.Context, userID int64, label string) error {
	log := logger.FromContext(ctx)

	if userID == 0 || label == "" {
		return ErrInvalidDataProvided
	}

	if err := s.entries.Delete(ctx, userID, label); err != nil {
		log.Err(err).Int64("user_id", userID).Str("label", label).Msg("deleting vault entry failed")
		return fmt.Errorf("deleting vault entry failed: %w", err)
	}

	return nil
}
