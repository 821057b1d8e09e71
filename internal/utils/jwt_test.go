package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 42, "admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.JTI)

	claims, err := ParseSessionToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, tok.JTI, claims.JTI)
	assert.WithinDuration(t, tok.Exp, claims.Exp, time.Second)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 1, "user", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenGarbage(t *testing.T) {
	for _, raw := range []string{"", "not.a.jwt", "a.b.c"} {
		_, err := ParseSessionToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

// A short-lived token (the logout cookie token) must verify while it
// is alive and fail once its expiry has elapsed.
func TestSessionTokenShortExpiry(t *testing.T) {
	alive, err := NewSessionToken(testSecret, 7, "user", 10*time.Second)
	require.NoError(t, err)
	_, err = ParseSessionToken(testSecret, alive.Token)
	assert.NoError(t, err, "token should verify before its expiry")

	dead, err := NewSessionToken(testSecret, 7, "user", -time.Second)
	require.NoError(t, err)
	_, err = ParseSessionToken(testSecret, dead.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "token should be rejected after its expiry")
}

func TestSessionTokenUniqueJTI(t *testing.T) {
	a, err := NewSessionToken(testSecret, 1, "user", time.Hour)
	require.NoError(t, err)
	b, err := NewSessionToken(testSecret, 1, "user", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}
