package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"restaurant_backend/internal/models"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by SessionCache.Lookup when the token is not cached.
var ErrCacheMiss = errors.New("session not cached")

// SessionCache keeps recently resolved table sessions close to the API.
// It is a read-through accelerator only; the database stays authoritative.
type SessionCache interface {
	Put(ctx context.Context, session *models.OrderSession) error
	Lookup(ctx context.Context, token string) (*models.OrderSession, error)
	Evict(ctx context.Context, tokens ...string) error
}

type redisSessionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionCache creates a SessionCache backed by Redis.
func NewRedisSessionCache(client *redis.Client) SessionCache {
	return &redisSessionCache{client: client, prefix: "table_session:"}
}

func (c *redisSessionCache) key(token string) string {
	return c.prefix + token
}

func (c *redisSessionCache) Put(ctx context.Context, session *models.OrderSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 || !session.IsActive {
		return nil
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := c.client.Set(ctx, c.key(session.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("caching session: %w", err)
	}
	return nil
}

func (c *redisSessionCache) Lookup(ctx context.Context, token string) (*models.OrderSession, error) {
	payload, err := c.client.Get(ctx, c.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached session: %w", err)
	}
	var s models.OrderSession
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding cached session: %w", err)
	}
	return &s, nil
}

func (c *redisSessionCache) Evict(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = c.key(t)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("evicting sessions: %w", err)
	}
	return nil
}

type noopSessionCache struct{}

// NewNoopSessionCache returns a cache that never hits. Used when Redis is not configured.
func NewNoopSessionCache() SessionCache {
	return noopSessionCache{}
}

func (noopSessionCache) Put(context.Context, *models.OrderSession) error { return nil }

func (noopSessionCache) Lookup(context.Context, string) (*models.OrderSession, error) {
	return nil, ErrCacheMiss
}

func (noopSessionCache) Evict(context.Context, ...string) error { return nil }
