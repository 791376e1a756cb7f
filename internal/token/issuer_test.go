package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "credvault")
	assert.Error(t, err)

	_, err = NewIssuer("secret", "")
	assert.Error(t, err)

	iss, err := NewIssuer("secret", "credvault")
	require.NoError(t, err)
	assert.NotNil(t, iss)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", "credvault")
	require.NoError(t, err)

	tok, err := iss.Issue(42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.SignedString)

	verified, err := iss.Verify(tok.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), verified.UserID)
	assert.Equal(t, "credvault", verified.RegisteredClaims.Issuer)
	assert.NotEmpty(t, verified.RegisteredClaims.ID, "jti must be set for deny-listing")
}

func TestVerify_Expired(t *testing.T) {
	iss, err := NewIssuer("secret", "credvault")
	require.NoError(t, err)

	tok, err := iss.Issue(1, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = iss.Verify(tok.SignedString)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongKeyIsInvalidNotExpired(t *testing.T) {
	issA, err := NewIssuer("secret-a", "credvault")
	require.NoError(t, err)
	issB, err := NewIssuer("secret-b", "credvault")
	require.NoError(t, err)

	tok, err := issA.Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = issB.Verify(tok.SignedString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongIssuer(t *testing.T) {
	issA, err := NewIssuer("secret", "service-a")
	require.NoError(t, err)
	issB, err := NewIssuer("secret", "service-b")
	require.NoError(t, err)

	tok, err := issA.Issue(1, time.Hour)
	require.NoError(t, err)

	_, err = issB.Verify(tok.SignedString)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	iss, err := NewIssuer("secret", "credvault")
	require.NoError(t, err)

	_, err = iss.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssue_RejectsZeroTTL(t *testing.T) {
	iss, err := NewIssuer("secret", "credvault")
	require.NoError(t, err)

	_, err = iss.Issue(1, 0)
	assert.Error(t, err)
}
