package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	type payload struct {
		Wallet float64 `json:"wallet"`
	}
	require.NoError(t, SetCache(ctx, rdb, UserCacheKey("u1"), payload{Wallet: 12.5}, time.Minute))

	var got payload
	found, err := GetCache(ctx, rdb, UserCacheKey("u1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 12.5, got.Wallet)

	require.NoError(t, DeleteCache(ctx, rdb, UserCacheKey("u1")))
	found, err = GetCache(ctx, rdb, UserCacheKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteCachePrefix(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)

	require.NoError(t, SetCache(ctx, rdb, AdminUsersCachePrefix+"page=1", 1, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, AdminUsersCachePrefix+"page=2", 2, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, UserCacheKey("keep"), 3, time.Minute))

	require.NoError(t, DeleteCachePrefix(ctx, rdb, AdminUsersCachePrefix))

	var v int
	found, err := GetCache(ctx, rdb, AdminUsersCachePrefix+"page=1", &v)
	require.NoError(t, err)
	assert.False(t, found)
	found, err = GetCache(ctx, rdb, UserCacheKey("keep"), &v)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestNilClientDisablesCache(t *testing.T) {
	ctx := context.Background()
	var v int
	found, err := GetCache(ctx, nil, "any", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "any", 1, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "any"))
	assert.NoError(t, DeleteCachePrefix(ctx, nil, "any"))
}
