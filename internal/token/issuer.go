// Package token mints and validates the signed bearer tokens that assert
// "this principal completed password + TOTP verification". The signing
// secret is process-wide and read-only after initialization; startup fails
// when it is missing, never falling back to a guessable default.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/credvault/credvault/models"
)

// Issuer defines the bearer-token contract.
type Issuer interface {
	// Issue mints a signed HS256 token for the given user, valid for ttl.
	Issue(userID int64, ttl time.Duration) (models.Token, error)

	// Verify validates a raw token string: signature, issuer claim, and
	// expiry. Failures are reported as ErrTokenExpired or ErrTokenInvalid —
	// both mean "re-authenticate", never "retry silently".
	Verify(raw string) (models.Token, error)
}

// issuer is the private implementation of [Issuer].
type issuer struct {
	signKey []byte
	name    string
}

// NewIssuer constructs an [Issuer] signing with signKey and embedding name
// as the "iss" claim. An empty signKey is a configuration error and is
// rejected here so the process aborts at wiring time.
func NewIssuer(signKey, name string) (Issuer, error) {
	if signKey == "" {
		return nil, errors.New("token signing secret is not configured")
	}
	if name == "" {
		return nil, errors.New("token issuer name is not configured")
	}

	return &issuer{signKey: []byte(signKey), name: name}, nil
}

// Issue implements [Issuer]. The token carries the standard claims:
//   - Issuer    (iss): the configured service name
//   - Subject   (sub): the user ID encoded as a string
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus ttl
//   - ID        (jti): a random UUID, used for deny-listing on logout
func (i *issuer) Issue(userID int64, ttl time.Duration) (models.Token, error) {
	if ttl <= 0 {
		return models.Token{}, errors.New("invalid ttl for token issue")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    i.name,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.signKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("signing token: %w", err)
	}

	return models.Token{
		Token:            tok,
		RegisteredClaims: claims,
		SignedString:     signed,
		UserID:           userID,
	}, nil
}

// Verify implements [Issuer]. Expiry and signature problems are surfaced as
// distinct sentinel errors so the transport layer can report them apart;
// every other defect (wrong issuer, malformed token, bad subject) collapses
// into ErrTokenInvalid.
func (i *issuer) Verify(raw string) (models.Token, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.signKey, nil
	}, jwt.WithIssuer(i.name), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return models.Token{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return models.Token{}, fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
		default:
			return models.Token{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return models.Token{}, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Subject == "" {
		return models.Token{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}

	return models.Token{
		Token:            parsed,
		RegisteredClaims: *claims,
		SignedString:     raw,
		UserID:           userID,
	}, nil
}
