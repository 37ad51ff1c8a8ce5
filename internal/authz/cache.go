package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how stale a resolved permission set may get when no
// explicit invalidation arrives.
const DefaultCacheTTL = 600 * time.Second

// CacheKey composes the Redis key for a principal's permission set.
func CacheKey(principalID int64) string {
	return fmt.Sprintf("permissions:%d", principalID)
}

// Cache stores resolved permission sets in Redis with a TTL, keyed by
// principal id. Concurrent fills for the same principal overwrite each other
// with identical content, so no locking is applied.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get loads a principal's cached permission set. The second return value is
// false on a miss; a miss is not an error.
func (c *Cache) Get(ctx context.Context, principalID int64) ([]Permission, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, CacheKey(principalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var perms []Permission
	if err := json.Unmarshal(payload, &perms); err != nil {
		return nil, false, err
	}
	return perms, true, nil
}

// Put stores a principal's permission set as a single key write. Empty sets
// are cached too, so principals without roles do not hammer the store.
func (c *Cache) Put(ctx context.Context, principalID int64, perms []Permission) error {
	if c == nil || c.client == nil {
		return nil
	}
	if perms == nil {
		perms = []Permission{}
	}
	payload, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(principalID), payload, c.ttl).Err()
}

// Invalidate drops a principal's cached entry. Must be called by any
// component that mutates the principal's roles or a held role's permissions.
func (c *Cache) Invalidate(ctx context.Context, principalID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, CacheKey(principalID)).Err()
}
