// Package cache holds the latest-price cache and the refresh-token
// revocation list. Redis backs both when configured; Memory backs prices
// otherwise.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"wallet-server/models"
)

const DefaultPriceTTL = 5 * time.Minute

func priceKey(symbol string) string {
	return fmt.Sprintf("price:%s", strings.ToUpper(symbol))
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// Redis stores prices as JSON and revoked token ids as plain keys.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) GetPrice(ctx context.Context, symbol string) (*models.AssetPrice, bool, error) {
	raw, err := r.rdb.Get(ctx, priceKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p models.AssetPrice
	if err := json.Unmarshal(raw, &p); err != nil {
		// unreadable entries are treated as a miss and dropped
		r.rdb.Del(ctx, priceKey(symbol))
		return nil, false, nil
	}
	return &p, true, nil
}

func (r *Redis) SetPrice(ctx context.Context, p models.AssetPrice) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, priceKey(p.Symbol), raw, r.ttl).Err()
}

func (r *Redis) DeletePrice(ctx context.Context, symbol string) error {
	return r.rdb.Del(ctx, priceKey(symbol)).Err()
}

// Revoke marks a token id as unusable until ttl passes. It reports false
// when the id was already revoked, so a refresh token is redeemed at most once.
func (r *Redis) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return r.rdb.SetNX(ctx, revokedKey(jti), 1, ttl).Result()
}

type memoryEntry struct {
	price   models.AssetPrice
	expires time.Time
}

// Memory is a process-local price cache with the same TTL semantics as Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &Memory{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (m *Memory) GetPrice(_ context.Context, symbol string) (*models.AssetPrice, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := priceKey(symbol)
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	p := e.price
	return &p, true, nil
}

func (m *Memory) SetPrice(_ context.Context, p models.AssetPrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[priceKey(p.Symbol)] = memoryEntry{price: p, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) DeletePrice(_ context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, priceKey(symbol))
	return nil
}
