package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title"`
	Price int64  `json:"price"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "promotions:active", []sample{{Title: "Promo", Price: 20000}}, time.Minute))

	var got []sample
	require.NoError(t, c.Get(ctx, "promotions:active", &got))
	assert.Equal(t, []sample{{Title: "Promo", Price: 20000}}, got)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var got sample
	assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "short", sample{Title: "x"}, -time.Second))
	assert.ErrorIs(t, c.Get(ctx, "short", &got), ErrCacheMiss)
}

func TestMemoryCacheInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "promotions:active", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "promotions:code:NOEL", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "videos:active", 3, time.Minute))

	require.NoError(t, c.InvalidatePattern(ctx, "promotions:*"))

	var v int
	assert.ErrorIs(t, c.Get(ctx, "promotions:active", &v), ErrCacheMiss)
	assert.ErrorIs(t, c.Get(ctx, "promotions:code:NOEL", &v), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "videos:active", &v))
	assert.Equal(t, 3, v)
}
