package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers should use [errors.Is] to match against
// these values.
var (
	// ErrUsernameTaken is returned when registration fails because a user
	// with the same username already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNoUserFound is returned when a lookup expected to match a user
	// produces an empty result set.
	ErrNoUserFound = errors.New("no user was found")

	// ErrEntryNotFound is returned when an operation targets a vault entry
	// (identified by owner and label) that does not exist.
	ErrEntryNotFound = errors.New("vault entry was not found")

	// ErrTotpAlreadySet is returned when a confirmed TOTP secret would be
	// overwritten outside an explicit rotation. The secret is write-once.
	ErrTotpAlreadySet = errors.New("totp secret is already set")

	// ErrMarkerNotFound is returned when a pending-login marker is absent,
	// already consumed, or expired.
	ErrMarkerNotFound = errors.New("pending login not found or expired")

	// ErrStoreUnavailable wraps transient driver-level failures. Callers may
	// retry; the condition does not indicate bad input.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Low-level database operation errors, wrapped around driver failures
// before any domain logic applies.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when an error is detected during multi-row
	// iteration, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
