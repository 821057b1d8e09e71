package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker is consulted on every verified token. It is an interface so
// middleware tests can substitute an in-memory implementation.
type Revoker interface {
	// IsRevoked reports whether the token id has been revoked.
	IsRevoked(ctx context.Context, jti string) bool
	// Revoke marks the token id revoked until the given expiry.
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// RevocationStore keeps revoked session token ids in Redis. Each entry
// lives only as long as the token it kills would have: after natural
// expiry the signature check rejects the token anyway, so the set
// never grows without bound.
//
// When the Redis client is nil or unreachable the store fails open:
// verification then relies on signature and expiry alone, which is
// exactly the behavior of a deployment that never configured Redis.
type RevocationStore struct{ RDB *redis.Client }

func NewRevocationStore(rdb *redis.Client) *RevocationStore { return &RevocationStore{RDB: rdb} }

func revocationKey(jti string) string { return "session:revoked:" + jti }

// Revoke records the token id with a TTL covering the token's
// remaining lifetime. Tokens already past expiry are not recorded.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	if s.RDB == nil || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.RDB.Set(ctx, revocationKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether the token id sits in the revocation set.
// Redis errors read as "not revoked" (fail open).
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if s.RDB == nil || jti == "" {
		return false
	}
	n, err := s.RDB.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
