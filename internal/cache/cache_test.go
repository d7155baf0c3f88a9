package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestGetMissAndHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	val, found, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, val)

	require.NoError(t, c.SetEx(ctx, "k", "v", time.Minute))
	val, found, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)
}

func TestSetExExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetEx(ctx, "k", "v", 10*time.Second))
	mr.FastForward(11 * time.Second)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeletePattern(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetEx(ctx, "formulas:1:1:10", "a", time.Minute))
	require.NoError(t, c.SetEx(ctx, "formulas:1:2:10", "b", time.Minute))
	require.NoError(t, c.SetEx(ctx, "formulas:2:1:10", "c", time.Minute))
	require.NoError(t, c.SetEx(ctx, "task:xyz", "d", time.Minute))

	n, err := c.DeletePattern(ctx, "formulas:1:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, _ := c.Get(ctx, "formulas:1:1:10")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "formulas:2:1:10")
	assert.True(t, found)
	_, found, _ = c.Get(ctx, "task:xyz")
	assert.True(t, found)
}

func TestDeletePatternNoMatches(t *testing.T) {
	c, _ := newTestCache(t)
	n, err := c.DeletePattern(context.Background(), "formulas:99:*")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUnavailabilityAndRecovery(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()
	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.False(t, c.Available())

	// Once marked unavailable, operations short-circuit with the sentinel.
	err = c.SetEx(ctx, "k", "v", time.Minute)
	assert.True(t, errors.Is(err, errs.CacheUnavailable))
	_, _, err = c.Get(ctx, "k")
	assert.True(t, errors.Is(err, errs.CacheUnavailable))
	_, err = c.DeletePattern(ctx, "k*")
	assert.True(t, errors.Is(err, errs.CacheUnavailable))

	require.NoError(t, mr.Restart())
	assert.True(t, c.Ping(ctx))
	assert.True(t, c.Available())
	require.NoError(t, c.SetEx(ctx, "k", "v", time.Minute))
}
