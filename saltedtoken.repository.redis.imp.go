// File: saltedtoken.repository.redis.imp.go

package saltedtoken

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const deniedPrefix = "saltedtoken:denied:"

// RedisTokenDenylist implements TokenDenylist on Redis keys with native expiry.
type RedisTokenDenylist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenDenylist creates a new Redis-based denylist and checks the connection.
func NewRedisTokenDenylist(ctx context.Context, client *redis.Client, logger *zap.Logger) (*RedisTokenDenylist, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisTokenDenylist{
		client: client,
		logger: logger,
	}, nil
}

// Deny stores the token hash with a Redis TTL.
func (r *RedisTokenDenylist) Deny(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if err := r.client.Set(ctx, deniedPrefix+hashToken(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// IsDenied reports whether the token hash key exists.
func (r *RedisTokenDenylist) IsDenied(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("token cannot be empty")
	}

	exists, err := r.client.Exists(ctx, deniedPrefix+hashToken(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}

	return exists > 0, nil
}

// CleanupExpired removes denylist keys that lost their TTL. Redis expires
// keys on its own; this only catches keys persisted without one.
func (r *RedisTokenDenylist) CleanupExpired(ctx context.Context) error {
	var cursor uint64
	const batchSize = 100

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context canceled: %w", err)
		}

		keys, next, err := r.client.Scan(ctx, cursor, deniedPrefix+"*", batchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan error: %w", err)
		}

		var stale []string
		for _, key := range keys {
			ttl, err := r.client.TTL(ctx, key).Result()
			if err != nil {
				r.logger.Warn("failed to read denylist key ttl", zap.String("key", key), zap.Error(err))
				continue
			}
			// -1 means no expiry, -2 means the key is already gone
			if ttl == -1 {
				stale = append(stale, key)
			}
		}

		if len(stale) > 0 {
			if err := r.client.Del(ctx, stale...).Err(); err != nil {
				return fmt.Errorf("redis delete error: %w", err)
			}
		}

		if next == 0 {
			break
		}
		cursor = next
	}

	return nil
}
