// Package cache is a thin read-through JSON cache over Redis for the catalog
// and ordering lists. Every failure degrades to a cache miss: the browse path
// must keep working when Redis is down or not configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Client struct {
	Rdb *redis.Client
	TTL time.Duration
}

// New wraps a Redis client. rdb may be nil; a nil-backed client never hits.
func New(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{Rdb: rdb, TTL: ttl}
}

// GetJSON loads key into dest, reporting whether a usable value was found.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.Rdb == nil {
		return false
	}
	raw, err := c.Rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry malformed, ignoring")
		return false
	}
	return true
}

// SetJSON stores v under key with the configured TTL. Errors are logged, not
// returned; a failed write just means the next read misses.
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil || c.Rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.Rdb.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
