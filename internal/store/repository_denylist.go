package store

import (
	"context"
	"fmt"
	"time"

	"github.com/credvault/credvault/internal/logger"
)

// denyListRepository is the PostgreSQL-backed implementation of
// [DenyListRepository]. Rows hold HMAC fingerprints of revoked bearer
// tokens, never the raw tokens themselves.
type denyListRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewDenyListRepository constructs a [DenyListRepository] backed by the
// provided database connection and logger.
func NewDenyListRepository(db *DB, logger *logger.Logger) DenyListRepository {
	logger.Debug().Msg("creating deny-list repository")
	return &denyListRepository{
		db:     db,
		logger: logger,
	}
}

// Add records the fingerprint of a revoked token together with the token's
// natural expiry, after which the row becomes purgeable. Re-revoking the
// same token is a no-op.
func (r *denyListRepository) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, addDeniedToken, fingerprint, expiresAt); err != nil {
		log.Err(err).Str("func", "*denyListRepository.Add").Msg("failed to add token to deny list")
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return nil
}

// Contains reports whether the fingerprint is currently deny-listed.
func (r *denyListRepository) Contains(ctx context.Context, fingerprint string) (bool, error) {
	log := logger.FromContext(ctx)

	var exists bool
	row := r.db.QueryRowContext(ctx, containsDeniedToken, fingerprint)
	if err := row.Scan(&exists); err != nil {
		log.Err(err).Str("func", "*denyListRepository.Contains").Msg("failed to check deny list")
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return exists, nil
}

// PurgeExpired removes rows whose expiry has passed and returns the number
// of rows deleted. Called periodically by the janitor worker.
func (r *denyListRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeDeniedTokens, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return affected, nil
}
