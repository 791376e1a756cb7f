package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/models"
)

// entryRepository is the PostgreSQL-backed implementation of
// [EntryRepository]. It executes all vault-entry CRUD against the
// "entries" table. Blobs pass through untouched; the repository never
// decodes them.
type entryRepository struct {
	db     *DB
	logger *logger.Logger
	sq     sq.StatementBuilderType
}

// NewEntryRepository constructs an [EntryRepository] backed by the provided
// database connection and logger.
func NewEntryRepository(db *DB, logger *logger.Logger) EntryRepository {
	logger.Debug().Msg("creating entry repository")
	return &entryRepository{
		db:     db,
		logger: logger,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetAll retrieves every entry owned by the given user, ordered by label so
// listings are stable across calls.
func (r *entryRepository) GetAll(ctx context.Context, userID int64) ([]models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.sq.
		Select("entry_id", "user_id", "label", "username", "blob", "created_at", "updated_at").
		From("entries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("label").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.GetAll").
			Int64("user_id", userID).
			Msg("failed to execute query for getting vault entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.Entry, 0, 16)

	for rows.Next() {
		var e models.Entry
		if scanErr := rows.Scan(&e.EntryID, &e.UserID, &e.Label, &e.Username, &e.Blob, &e.CreatedAt, &e.UpdatedAt); scanErr != nil {
			log.Err(scanErr).
				Str("func", "*entryRepository.GetAll").
				Int64("user_id", userID).
				Msg("failed to scan entry row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		entries = append(entries, e)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "*entryRepository.GetAll").
			Int64("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// Upsert inserts the entry or, when (user_id, label) already exists,
// replaces its username and blob. The entry lifecycle is upsert-only:
// entries never expire implicitly.
func (r *entryRepository) Upsert(ctx context.Context, entry models.Entry) (models.Entry, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.sq.
		Insert("entries").
		Columns("user_id", "label", "username", "blob").
		Values(entry.UserID, entry.Label, entry.Username, entry.Blob).
		Suffix(`ON CONFLICT (user_id, label) DO UPDATE
            SET username = EXCLUDED.username,
                blob = EXCLUDED.blob,
                updated_at = NOW()
            RETURNING entry_id, user_id, label, username, blob, created_at, updated_at`).
		ToSql()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var saved models.Entry
	row := r.db.QueryRowContext(ctx, query, args...)
	if scanErr := row.Scan(&saved.EntryID, &saved.UserID, &saved.Label, &saved.Username, &saved.Blob, &saved.CreatedAt, &saved.UpdatedAt); scanErr != nil {
		log.Err(scanErr).
			Str("func", "*entryRepository.Upsert").
			Int64("user_id", entry.UserID).
			Str("label", entry.Label).
			Msg("failed to upsert vault entry")
		return models.Entry{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, scanErr)
	}

	return saved, nil
}

// Delete removes the entry under (userID, label). Deleting a non-existent
// entry yields [ErrEntryNotFound].
func (r *entryRepository) Delete(ctx context.Context, userID int64, label string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.sq.
		Delete("entries").
		Where(sq.Eq{"user_id": userID, "label": label}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*entryRepository.Delete").
			Int64("user_id", userID).
			Str("label", label).
			Msg("failed to delete vault entry")
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}

	return nil
}
