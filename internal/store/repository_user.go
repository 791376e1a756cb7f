package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/models"
)

// userRepository is the PostgreSQL-backed implementation of
// [UserRepository]. It handles account creation and lookup against the
// "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions. Password
// hashes and TOTP secrets pass through as opaque strings and are never
// logged.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new principal and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// The INSERT returns all columns via a RETURNING clause, so the caller
// receives the canonical database representation of the new account.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUsernameTaken].
//   - Any other driver-level error → wrapped in [ErrStoreUnavailable].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Username, user.PasswordHash)

	var created models.User
	var totpSecret sql.NullString
	if err := row.Scan(&created.UserID, &created.Username, &created.PasswordHash, &totpSecret, &created.CreatedAt); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("username", user.Username).Msg("error creating user")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrUsernameTaken
		default:
			return models.User{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	created.TotpSecret = totpSecret.String

	return created, nil
}

// FindUserByUsername retrieves the principal whose username matches.
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserFound].
//   - Any other driver-level error → wrapped in [ErrStoreUnavailable].
func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findUser(ctx, findUserByUsername, username)
}

// FindUserByID retrieves the principal with the given internal ID.
func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, findUserByID, userID)
}

func (r *userRepository) findUser(ctx context.Context, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	var totpSecret sql.NullString

	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&found.UserID, &found.Username, &found.PasswordHash, &totpSecret, &found.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserFound
		}
		log.Err(err).Str("func", "*userRepository.findUser").Msg("error scanning user row")
		return models.User{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	found.TotpSecret = totpSecret.String

	return found, nil
}

// SetTotpSecret persists a confirmed TOTP secret for the user.
//
// The secret is write-once: without force, the UPDATE touches only rows
// whose totp_secret is still NULL, and an already enrolled user yields
// [ErrTotpAlreadySet]. With force (explicit rotation) the existing secret
// is replaced.
func (r *userRepository) SetTotpSecret(ctx context.Context, userID int64, secret string, force bool) error {
	log := logger.FromContext(ctx)

	query := setTotpSecretIfUnset
	if force {
		query = setTotpSecretForce
	}

	res, err := r.db.ExecContext(ctx, query, secret, userID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SetTotpSecret").Int64("user_id", userID).Msg("error persisting totp secret")
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		if force {
			return ErrNoUserFound
		}
		// Either the user does not exist or the secret is already set;
		// disambiguate for the caller.
		if _, findErr := r.FindUserByID(ctx, userID); findErr != nil {
			return findErr
		}
		return ErrTotpAlreadySet
	}

	return nil
}
