// Package cache holds JSON read-model caches on Redis.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewCache is a JSON-backed Redis cache bound to a view type T.  A nil
// client turns every call into a miss or a no-op, matching the rest of the
// Redis-backed middleware.
type ViewCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache storing keys under prefix.
func NewViewCache[T any](client *redis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) key(k string) string { return c.prefix + ":" + k }

// Get returns (nil, false) on any miss or decode error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set stores value; write errors are logged, a failed cache write is not
// a failed request.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("ViewCache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		log.Printf("ViewCache: write error for key %s: %v", key, err)
	}
}

// Delete drops key, used after writes to the underlying row.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		log.Printf("ViewCache: delete error for key %s: %v", key, err)
	}
}
