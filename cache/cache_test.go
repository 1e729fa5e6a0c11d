package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-server/models"
)

func TestMemoryPriceCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	_, ok, err := m.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetPrice(ctx, models.AssetPrice{Symbol: "AAPL", Price: models.NewDecimal(decimal.RequireFromString("190.5")), Currency: "USD"}))

	p, ok, err := m.GetPrice(ctx, "aapl")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "190.5", p.Price.String())

	now = now.Add(time.Minute)
	_, ok, err = m.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetPrice(ctx, models.AssetPrice{Symbol: "MSFT", Price: models.NewDecimal(decimal.NewFromInt(1))}))
	require.NoError(t, m.DeletePrice(ctx, "MSFT"))
	_, ok, _ = m.GetPrice(ctx, "MSFT")
	assert.False(t, ok)
}

func redisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestRedisPriceCache(t *testing.T) {
	rdb, mr := redisClient(t)
	ctx := context.Background()
	r := NewRedis(rdb, time.Minute)

	_, ok, err := r.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetPrice(ctx, models.AssetPrice{Symbol: "aapl", Price: models.NewDecimal(decimal.RequireFromString("190.50")), Currency: "USD"}))
	p, ok, err := r.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "190.50", p.Price.String())
	assert.Equal(t, "USD", p.Currency)

	assert.True(t, mr.Exists("price:AAPL"))
	assert.Equal(t, time.Minute, mr.TTL("price:AAPL"))

	mr.FastForward(time.Minute)
	_, ok, err = r.GetPrice(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetPrice(ctx, models.AssetPrice{Symbol: "MSFT", Price: models.NewDecimal(decimal.NewFromInt(1))}))
	require.NoError(t, r.DeletePrice(ctx, "msft"))
	assert.False(t, mr.Exists("price:MSFT"))
}

func TestRedisUnreadablePriceIsMiss(t *testing.T) {
	rdb, mr := redisClient(t)
	ctx := context.Background()
	r := NewRedis(rdb, 0)

	require.NoError(t, mr.Set("price:BAD", "{not json"))
	_, ok, err := r.GetPrice(ctx, "BAD")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("price:BAD"))
}

func TestRedisRevocation(t *testing.T) {
	rdb, mr := redisClient(t)
	ctx := context.Background()
	r := NewRedis(rdb, 0)

	first, err := r.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, time.Minute, mr.TTL("revoked:jti-1"))

	again, err := r.Revoke(ctx, "jti-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	// the mark lives as long as the token could
	mr.FastForward(time.Minute)
	assert.False(t, mr.Exists("revoked:jti-1"))

	expired, err := r.Revoke(ctx, "jti-expired", 0)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.False(t, mr.Exists("revoked:jti-expired"))
}

func TestRedisRevocationConcurrent(t *testing.T) {
	rdb, _ := redisClient(t)
	ctx := context.Background()
	r := NewRedis(rdb, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := r.Revoke(ctx, "jti-race", time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
