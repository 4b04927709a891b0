package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usmanz-dev/nova-pos-terminal/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return cache, mr, cleanup
}

func TestRedisGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	snap := &Snapshot{
		Products: []domain.Product{
			{ID: "p1", Name: "Coke", Price: 100, Stock: 10, IsActive: true},
		},
		Categories: []domain.Category{{ID: "c1", Name: "Drinks"}},
		FetchedAt:  time.Now(),
	}
	data, _ := json.Marshal(snap)
	mr.Set(catalogKey, string(data))

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Coke", got.Products[0].Name)
	assert.Len(t, got.Categories, 1)
}

func TestRedisGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(catalogKey, "{not json")

	_, err := cache.Get(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSetThenGet(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	snap := &Snapshot{
		Products:  []domain.Product{{ID: "p1", Name: "Lays", Stock: 3, IsActive: true}},
		FetchedAt: time.Now(),
	}
	require.NoError(t, cache.Set(ctx, snap))

	// TTL is base plus jitter, always positive.
	assert.Greater(t, mr.TTL(catalogKey), time.Duration(0))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lays", got.Products[0].Name)
}

func TestRedisDelete(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &Snapshot{FetchedAt: time.Now()}))
	require.NoError(t, cache.Delete(ctx))

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
