package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ektagames/internal/domain"
)

var ErrCacheMiss = errors.New("catalog cache miss")

// Cache stores the last aggregated catalog.
type Cache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
	key    string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, key: "catalog:products"}
}

func (r *RedisCache) Get(ctx context.Context) ([]domain.Product, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var out []domain.Product
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal catalog failed: %w", err)
	}
	return out, nil
}

func (r *RedisCache) Set(ctx context.Context, products []domain.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog failed: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// MemoryCache keeps the catalog in process.
type MemoryCache struct {
	mu       sync.RWMutex
	products []domain.Product
	expires  time.Time
	now      func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (m *MemoryCache) Get(context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.products == nil || !m.now().Before(m.expires) {
		return nil, ErrCacheMiss
	}
	return slices.Clone(m.products), nil
}

func (m *MemoryCache) Set(_ context.Context, products []domain.Product, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = slices.Clone(products)
	m.expires = m.now().Add(ttl)
	return nil
}
