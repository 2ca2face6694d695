package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warrenposo/cloudmining-backend/internal/config"
	"github.com/warrenposo/cloudmining-backend/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGetBalance(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("balance:miner", 342.5, time.Minute)
	require.NoError(t, err)

	var balance float64
	found, err := cache.Get("balance:miner", &balance)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 342.5, balance, 0.0001)
}

func TestSetAndGetPurchaseSession(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.PurchaseSession{
		Username: "miner",
		PlanID:   "btc-standard",
		State:    models.PurchaseStateForm,
		Gateway:  "btc",
	}
	err := cache.Set("purchase:miner", expected, 30*time.Minute)
	require.NoError(t, err)

	var actual models.PurchaseSession
	found, err := cache.Get("purchase:miner", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out float64
	found, err := cache.Get("balance:no_such_user", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("balance:miner", 10.0, time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("balance:miner")
	require.NoError(t, err)

	var out float64
	found, err := cache.Get("balance:miner", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out models.PurchaseSession
	found, err := cache.Get("bad", &out)
	require.Error(t, err)
	assert.False(t, found)
}
