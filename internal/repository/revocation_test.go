package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Without a Redis client the store fails open: nothing reads as
// revoked and revocation attempts succeed silently. This mirrors a
// deployment that never configured Redis.
func TestRevocationStoreNilClient(t *testing.T) {
	s := NewRevocationStore(nil)
	ctx := context.Background()

	assert.False(t, s.IsRevoked(ctx, "any-jti"))
	assert.NoError(t, s.Revoke(ctx, "any-jti", time.Now().Add(time.Hour)))
	assert.False(t, s.IsRevoked(ctx, "any-jti"))
}

func TestRevocationStoreEmptyJTI(t *testing.T) {
	s := NewRevocationStore(nil)
	assert.NoError(t, s.Revoke(context.Background(), "", time.Now().Add(time.Hour)))
	assert.False(t, s.IsRevoked(context.Background(), ""))
}
