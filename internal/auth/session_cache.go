package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ventar/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionCache holds live sessions keyed by token ID. Sign-out deletes the
// entry, so a token that still verifies cryptographically stops resolving to
// a session the moment the host signs out.
type SessionCache interface {
	Put(ctx context.Context, tokenID string, session models.Session, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (*models.Session, error)
	Delete(ctx context.Context, tokenID string) error
}

// RedisSessionCache implements SessionCache on Redis with per-key TTLs.
type RedisSessionCache struct {
	Client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{Client: client}
}

func (c *RedisSessionCache) Put(ctx context.Context, tokenID string, session models.Session, ttl time.Duration) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.Client.Set(ctx, sessionKeyPrefix+tokenID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when the session does not exist or has expired.
func (c *RedisSessionCache) Get(ctx context.Context, tokenID string) (*models.Session, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	payload, err := c.Client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if !session.Valid() {
		return nil, nil
	}
	return &session, nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, tokenID string) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.Client.Del(ctx, sessionKeyPrefix+tokenID).Err()
}
