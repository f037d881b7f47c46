// Package cache provides the cross-process resolution cache: once one
// pipeline worker normalizes a (taxonomy, concept) pair, every other worker
// in the fleet should see the answer without re-running the resolution
// order (the predecessor used a singleton module-level
// Redis client; an explicit handle avoids hidden global state across the
// worker pool).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache wraps a Redis client. Nil-safe: every method treats a nil *Cache or
// a nil underlying client as "cache disabled" — the cache is always optional.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Cache against addr (e.g. "localhost:6379"). It does not ping
// eagerly; call Ping to verify connectivity.
func New(addr, password string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: 0}),
		ttl:    ttl,
	}
}

// NewFromClient wraps an already-constructed client, used by tests against
// a miniredis instance.
func NewFromClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

// Ping reports whether the backing Redis instance is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache: no client configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func resolutionKey(taxonomy, concept, contextHint string, siblingAccepted bool) string {
	return fmt.Sprintf("finsight:normalize:%s:%s:%s:%t", taxonomy, concept, contextHint, siblingAccepted)
}

// ResolvedLabel is the cached normalization outcome for one concept.
type ResolvedLabel struct {
	NormalizedLabel string `json:"normalized_label"`
	Source          string `json:"source"`
}

// GetResolution returns a previously cached normalization for (taxonomy,
// concept, contextHint, siblingAccepted), if present. A miss or a disabled
// cache both return ok=false; callers must treat either the same way — fall
// through to live resolution. contextHint and siblingAccepted are part of
// the key because both can change a concept's normalized_label: a cached
// answer from one filing's sibling-presence state must never leak into a
// filing where that state differs.
func (c *Cache) GetResolution(ctx context.Context, taxonomy, concept, contextHint string, siblingAccepted bool) (ResolvedLabel, bool) {
	if c == nil || c.client == nil {
		return ResolvedLabel{}, false
	}
	raw, err := c.client.Get(ctx, resolutionKey(taxonomy, concept, contextHint, siblingAccepted)).Bytes()
	if err != nil {
		return ResolvedLabel{}, false
	}
	var out ResolvedLabel
	if err := json.Unmarshal(raw, &out); err != nil {
		return ResolvedLabel{}, false
	}
	return out, true
}

// SetResolution caches a normalization outcome. Errors are swallowed: a
// cache write failure must never fail the pipeline.
func (c *Cache) SetResolution(ctx context.Context, taxonomy, concept, contextHint string, siblingAccepted bool, resolved ResolvedLabel) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(resolved)
	if err != nil {
		return
	}
	c.client.Set(ctx, resolutionKey(taxonomy, concept, contextHint, siblingAccepted), raw, c.ttl)
}
