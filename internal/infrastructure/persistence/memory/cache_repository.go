// Package memory provides in-memory cache repository implementation
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const (
	defaultSize = 10000
	defaultTTL  = 24 * time.Hour
)

// cacheItem represents a cached item
type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// CacheRepository is a size-bounded LRU cache with per-key expiry
type CacheRepository struct {
	items *lru.Cache[string, cacheItem]
	now   func() time.Time
}

// NewCacheRepository creates a new in-memory cache holding at most size keys
func NewCacheRepository(size int) (*CacheRepository, error) {
	if size <= 0 {
		size = defaultSize
	}
	items, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &CacheRepository{items: items, now: time.Now}, nil
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// Get retrieves a value from cache
func (r *CacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	item, ok := r.items.Get(key)
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	if r.now().After(item.expiresAt) {
		r.items.Remove(key)
		return nil, outbound.ErrCacheMiss
	}
	return item.value, nil
}

// Set stores a value in cache with TTL. A zero TTL keeps the key for a day.
func (r *CacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	r.items.Add(key, cacheItem{value: stored, expiresAt: r.now().Add(ttl)})
	return nil
}

// Delete removes a key from cache
func (r *CacheRepository) Delete(_ context.Context, key string) error {
	r.items.Remove(key)
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.Get(ctx, key)
	return err == nil, nil
}

// Len returns the number of keys held, expired or not
func (r *CacheRepository) Len() int {
	return r.items.Len()
}
