package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is a Redis read-through decorator over an AttributeStore. Cache
// failures never surface to callers; the underlying store is the source of
// truth and the cache degrades to a pass-through.
type Cache struct {
	inner  AttributeStore
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps the given store with a Redis cache.
func NewCache(inner AttributeStore, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{inner: inner, client: client, ttl: ttl}
}

func (c *Cache) GetAttribute(ctx context.Context, userID uuid.UUID, name string) ([]byte, error) {
	key := cacheKey(userID, name)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return cached, nil
	}

	value, err := c.inner.GetAttribute(ctx, userID, name)
	if err != nil {
		return nil, err
	}

	// Best effort; a failed cache fill is invisible to the caller.
	_ = c.client.Set(ctx, key, value, c.ttl).Err()
	return value, nil
}

func (c *Cache) SetAttribute(ctx context.Context, userID uuid.UUID, name string, value []byte) error {
	if err := c.inner.SetAttribute(ctx, userID, name, value); err != nil {
		return err
	}

	// Best effort; a failed invalidation leaves a stale entry that expires
	// with the TTL.
	_ = c.client.Del(ctx, cacheKey(userID, name)).Err()
	return nil
}

func cacheKey(userID uuid.UUID, name string) string {
	return "user_attr:" + userID.String() + ":" + name
}

// Ensure Cache implements AttributeStore
var _ AttributeStore = (*Cache)(nil)
