package repository

import (
	"context"
	"testing"
	"time"

	"froid-storefront/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCartRepository(client, ttl, zerolog.Nop()), mr
}

func testLines() []model.CartLine {
	return []model.CartLine{
		{Product: model.Product{ID: 1, Name: "Climatiseur 12000 BTU", Price: 150000, Stock: 4, Available: true}, Quantity: 1},
		{Product: model.Product{ID: 2, Name: "Ventilateur", Price: 25000, Stock: 10, Available: true}, Quantity: 2},
	}
}

func TestRedisCartRepository_SaveAndLoad(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", testLines()))
	assert.True(t, mr.Exists("cart:abc"))
	assert.Equal(t, time.Hour, mr.TTL("cart:abc"))

	lines, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(150000), lines[0].Product.Price)
	assert.Equal(t, 2, lines[1].Quantity)
}

func TestRedisCartRepository_LoadMissing(t *testing.T) {
	repo, _ := setupTestRedis(t, time.Hour)

	lines, err := repo.Load(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestRedisCartRepository_LoadSlidesExpiry(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", testLines()))
	mr.FastForward(45 * time.Minute)

	_, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("cart:abc"))
}

func TestRedisCartRepository_Expires(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", testLines()))
	mr.FastForward(2 * time.Minute)

	lines, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestRedisCartRepository_SaveEmptyAndDelete(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", nil))
	raw, err := mr.Get("cart:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)

	lines, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)

	require.NoError(t, repo.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("cart:abc"))
}

func TestRedisCartRepository_CorruptPayload(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	require.NoError(t, mr.Set("cart:abc", "not-json"))

	_, err := repo.Load(context.Background(), "abc")

	assert.ErrorContains(t, err, "failed to decode cart")
}

func TestRedisCartRepository_ConnectionError(t *testing.T) {
	repo, mr := setupTestRedis(t, time.Hour)
	mr.Close()

	_, err := repo.Load(context.Background(), "abc")
	assert.ErrorContains(t, err, "redis get failed")

	err = repo.Save(context.Background(), "abc", testLines())
	assert.ErrorContains(t, err, "redis set failed")
}
