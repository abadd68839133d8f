package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, time.Minute), mr
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	in := map[string]int{"toyota": 2, "honda": 1}
	c.SetJSON(ctx, "browse:counts", in)

	var out map[string]int
	assert.True(t, c.GetJSON(ctx, "browse:counts", &out))
	assert.Equal(t, in, out)
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c, _ := setupCache(t)

	var out []string
	assert.False(t, c.GetJSON(context.Background(), "nothing-here", &out))
}

func TestCache_MalformedEntryIsAMiss(t *testing.T) {
	c, mr := setupCache(t)
	mr.Set("bad", "{not json")

	var out map[string]string
	assert.False(t, c.GetJSON(context.Background(), "bad", &out))
}

func TestCache_EntriesExpire(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, "ttl-key", "value")
	mr.FastForward(2 * time.Minute)

	var out string
	assert.False(t, c.GetJSON(ctx, "ttl-key", &out))
}

func TestCache_NilClientNeverHits(t *testing.T) {
	var c *Client
	ctx := context.Background()

	c.SetJSON(ctx, "k", "v") // must not panic
	var out string
	assert.False(t, c.GetJSON(ctx, "k", &out))

	c = New(nil, time.Minute)
	assert.False(t, c.GetJSON(ctx, "k", &out))
}
