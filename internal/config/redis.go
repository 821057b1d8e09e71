package config

// Redis backs the distributed rate limiter and the revoked-session
// set. Both degrade gracefully without it, so a failed connection at
// startup yields nil instead of an error: rate limiting is skipped and
// token verification falls back to signature and expiry checks only.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from REDIS_HOST, REDIS_PORT,
// REDIS_PASSWORD and REDIS_DB. Returns nil when the server does not
// answer a ping within two seconds.
func NewRedisClient() *redis.Client {
	addr := envStr("REDIS_HOST", "localhost") + ":" + envStr("REDIS_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
