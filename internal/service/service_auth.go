package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/credvault/credvault/internal/config"
	"github.com/credvault/credvault/internal/crypto"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/internal/token"
	"github.com/credvault/credvault/internal/totp"
	"github.com/credvault/credvault/internal/utils"
	"github.com/credvault/credvault/models"
)

// authService is the concrete implementation of [AuthService].
//
// It enforces the two-step session protocol: the password step produces a
// short-lived pending-login marker, and only a verified TOTP code against
// that marker yields a bearer token. An enrollment secret lives exclusively
// inside the marker until its first code verifies; it is persisted only at
// that moment.
//
// Passwords, codes, and secrets are never logged; log lines carry usernames
// and error kinds only.
type authService struct {
	users    store.UserRepository
	pending  store.PendingLoginStore
	denyList store.DenyListRepository

	keys   crypto.KeyService
	totp   totp.Engine
	issuer token.Issuer

	// hashKey is the HMAC secret used to fingerprint tokens for the deny
	// list. Distinct from the token signing key.
	hashKey string

	// tokenDuration controls how long a newly issued bearer token remains
	// valid.
	tokenDuration time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService constructs an [AuthService] wired to the given storages and
// populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(storages store.Storages, keys crypto.KeyService, totpEngine totp.Engine, issuer token.Issuer, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		users:         storages.UserRepository,
		pending:       storages.PendingLogins,
		denyList:      storages.DenyListRepository,
		keys:          keys,
		totp:          totpEngine,
		issuer:        issuer,
		hashKey:       cfg.HashKey,
		tokenDuration: cfg.TokenDuration,
		now:           time.Now,
		logger:        logger,
	}
}

// Register creates a new user account with no MFA enrollment.
//
// The username must be email-shaped and at most 80 characters; the password
// must be 8..512 characters. The password is Argon2id-hashed before it
// leaves this function; the plaintext is never stored or logged.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if username or password fails validation.
//   - A wrapped storage error if persistence fails (e.g. username already
//     taken — see store.ErrUsernameTaken).
func (a *authService) Register(ctx context.Context, username, password string) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := validateCredentials(username, password); err != nil {
		log.Error().Str("username", username).Msg("invalid registration data provided")
		return models.User{}, err
	}

	hash, err := a.keys.HashPassword(password)
	if err != nil {
		log.Err(err).Str("username", username).Msg("password hashing failed")
		return models.User{}, fmt.Errorf("password hashing failed: %w", err)
	}

	registered, err := a.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		log.Err(err).Str("username", username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registered, nil
}

// BeginLogin performs the password step of a login.
//
// On success it stores a pending-login marker and returns it to the caller;
// no bearer token is issued here under any circumstances. When the account
// has no confirmed TOTP secret yet, a fresh enrollment secret is generated,
// stashed inside the marker, and returned once together with its
// provisioning URI.
//
// An unknown username and a wrong password are both reported as
// ErrWrongPassword so the endpoint does not reveal which accounts exist.
func (a *authService) BeginLogin(ctx context.Context, username, password string) (LoginChallenge, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		return LoginChallenge{}, ErrInvalidDataProvided
	}

	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNoUserFound) {
			log.Error().Str("username", username).Msg("login attempt for unknown user")
			return LoginChallenge{}, ErrWrongPassword
		}
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return LoginChallenge{}, fmt.Errorf("user search by username failed: %w", err)
	}

	ok, err := a.keys.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		log.Err(err).Str("username", username).Msg("password verification failed")
		return LoginChallenge{}, fmt.Errorf("password verification failed: %w", err)
	}
	if !ok {
		log.Error().Str("username", username).Msg("wrong password")
		return LoginChallenge{}, ErrWrongPassword
	}

	challenge := LoginChallenge{}
	marker := store.PendingLogin{UserID: user.UserID}

	if !user.MfaEnrolled() {
		secret, err := a.totp.GenerateSecret()
		if err != nil {
			log.Err(err).Str("username", username).Msg("enrollment secret generation failed")
			return LoginChallenge{}, fmt.Errorf("enrollment secret generation failed: %w", err)
		}
		uri, err := a.totp.ProvisioningURI(secret, user.Username)
		if err != nil {
			return LoginChallenge{}, fmt.Errorf("building provisioning uri: %w", err)
		}

		marker.EnrollSecret = secret
		challenge.TotpSecret = secret
		challenge.TotpURI = uri
	}

	stored, err := a.pending.Put(ctx, marker)
	if err != nil {
		log.Err(err).Str("username", username).Msg("storing pending login failed")
		return LoginChallenge{}, fmt.Errorf("storing pending login failed: %w", err)
	}

	challenge.PendingMarker = stored.ID
	challenge.ExpiresAt = stored.ExpiresAt

	return challenge, nil
}

// CompleteLogin performs the TOTP step of a login and, on success, issues
// the bearer token.
//
// The code is checked against the marker's enrollment secret when one is
// present, or against the account's stored secret otherwise. A wrong code
// leaves the marker usable until it expires; a verified code consumes the
// marker, persists a pending enrollment secret (write-once, or replacing on
// rotation), and mints the token.
func (a *authService) CompleteLogin(ctx context.Context, markerID, code string) (models.Token, error) {
	log := logger.FromContext(ctx)

	if markerID == "" || code == "" {
		return models.Token{}, ErrInvalidDataProvided
	}

	marker, err := a.pending.Get(ctx, markerID)
	if err != nil {
		log.Error().Msg("unknown or expired pending login marker")
		return models.Token{}, ErrMfaInvalid
	}

	secret := marker.EnrollSecret
	if secret == "" {
		user, err := a.users.FindUserByID(ctx, marker.UserID)
		if err != nil {
			log.Err(err).Int64("user_id", marker.UserID).Msg("user lookup for mfa step failed")
			return models.Token{}, fmt.Errorf("user lookup for mfa step failed: %w", err)
		}
		if !user.MfaEnrolled() {
			return models.Token{}, ErrMfaInvalid
		}
		secret = user.TotpSecret
	}

	if !a.totp.Verify(secret, code, a.now()) {
		log.Error().Int64("user_id", marker.UserID).Msg("mfa code rejected")
		return models.Token{}, ErrMfaCodeInvalid
	}

	// Consume only after the code verified: a failed attempt must not burn
	// the marker, and a second concurrent success must not mint two
	// enrollments.
	if _, err := a.pending.Consume(ctx, markerID); err != nil {
		return models.Token{}, ErrMfaInvalid
	}

	if marker.EnrollSecret != "" {
		if err := a.users.SetTotpSecret(ctx, marker.UserID, marker.EnrollSecret, marker.Rotate); err != nil {
			if errors.Is(err, store.ErrTotpAlreadySet) {
				// A stale enrollment marker from before another device
				// finished enrolling. The account's secret wins.
				log.Error().Int64("user_id", marker.UserID).Msg("stale enrollment marker rejected")
				return models.Token{}, ErrMfaInvalid
			}
			log.Err(err).Int64("user_id", marker.UserID).Msg("persisting confirmed totp secret failed")
			return models.Token{}, fmt.Errorf("persisting confirmed totp secret failed: %w", err)
		}
	}

	issued, err := a.issuer.Issue(marker.UserID, a.tokenDuration)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return issued, nil
}

// RotateTotp provisions a replacement TOTP secret for an already enrolled
// user. The caller must present a code valid for the current secret. The
// old secret stays in force until a code for the new one verifies through
// CompleteLogin.
func (a *authService) RotateTotp(ctx context.Context, userID int64, code string) (LoginChallenge, error) {
	log := logger.FromContext(ctx)

	if code == "" {
		return LoginChallenge{}, ErrInvalidDataProvided
	}

	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("user lookup for rotation failed")
		return LoginChallenge{}, fmt.Errorf("user lookup for rotation failed: %w", err)
	}
	if !user.MfaEnrolled() {
		return LoginChallenge{}, ErrNoEnrollment
	}

	if !a.totp.Verify(user.TotpSecret, code, a.now()) {
		log.Error().Int64("user_id", userID).Msg("rotation code rejected")
		return LoginChallenge{}, ErrMfaCodeInvalid
	}

	secret, err := a.totp.GenerateSecret()
	if err != nil {
		return LoginChallenge{}, fmt.Errorf("rotation secret generation failed: %w", err)
	}
	uri, err := a.totp.ProvisioningURI(secret, user.Username)
	if err != nil {
		return LoginChallenge{}, fmt.Errorf("building provisioning uri: %w", err)
	}

	stored, err := a.pending.Put(ctx, store.PendingLogin{
		UserID:       userID,
		EnrollSecret: secret,
		Rotate:       true,
	})
	if err != nil {
		return LoginChallenge{}, fmt.Errorf("storing rotation marker failed: %w", err)
	}

	return LoginChallenge{
		PendingMarker: stored.ID,
		ExpiresAt:     stored.ExpiresAt,
		TotpSecret:    secret,
		TotpURI:       uri,
	}, nil
}

// EnrollmentURI implements [AuthService]. The marker is looked up but not
// consumed, so the QR code can be re-fetched until the code verifies or the
// marker expires.
func (a *authService) EnrollmentURI(ctx context.Context, markerID string) (string, error) {
	if markerID == "" {
		return "", ErrInvalidDataProvided
	}

	marker, err := a.pending.Get(ctx, markerID)
	if err != nil {
		return "", ErrMfaInvalid
	}
	if marker.EnrollSecret == "" {
		return "", ErrNoEnrollment
	}

	user, err := a.users.FindUserByID(ctx, marker.UserID)
	if err != nil {
		return "", fmt.Errorf("user lookup for provisioning failed: %w", err)
	}

	return a.totp.ProvisioningURI(marker.EnrollSecret, user.Username)
}

// Logout revokes the presented token until its natural expiry by recording
// its HMAC fingerprint on the deny list. The raw token never reaches the
// database.
func (a *authService) Logout(ctx context.Context, tok models.Token) error {
	log := logger.FromContext(ctx)

	if tok.SignedString == "" {
		return ErrInvalidDataProvided
	}

	expiresAt := a.now().Add(a.tokenDuration)
	if tok.ExpiresAt != nil {
		expiresAt = tok.ExpiresAt.Time
	}

	fingerprint := utils.HashString(tok.SignedString, a.hashKey)
	if err := a.denyList.Add(ctx, fingerprint, expiresAt); err != nil {
		log.Err(err).Int64("user_id", tok.UserID).Msg("deny-listing token failed")
		return fmt.Errorf("deny-listing token failed: %w", err)
	}

	return nil
}

// ParseToken validates a raw bearer token: signature, issuer, expiry, and
// revocation status.
//
// Expiry and structural failures surface as the token package sentinels;
// a deny-listed token yields ErrTokenRevoked. All three mean the caller
// must re-authenticate through the full two-step protocol.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	parsed, err := a.issuer.Verify(tokenString)
	if err != nil {
		return models.Token{}, err
	}

	revoked, err := a.denyList.Contains(ctx, utils.HashString(tokenString, a.hashKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("deny-list lookup failed: %w", err)
	}
	if revoked {
		return models.Token{}, ErrTokenRevoked
	}

	return parsed, nil
}
