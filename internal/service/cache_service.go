package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ignatzorin/turismo/internal/goroutine"
)

const cacheCleanupInterval = 5 * time.Minute

// CacheService хранит значения в памяти с TTL. Используется для списка активностей.
type CacheService struct {
	mu    sync.RWMutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewCacheService создаёт кэш. Фоновая очистка останавливается вместе с ctx.
func NewCacheService(ctx context.Context) *CacheService {
	cs := &CacheService{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
	}

	goroutine.SafeGo(ctx, "cache cleanup", func(ctx context.Context) {
		cs.cleanupLoop(ctx, cacheCleanupInterval)
	})

	return cs
}

// Get возвращает непросроченное значение по ключу.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, exists := cs.cache[key]
	if !exists {
		return nil, false
	}

	// Просроченные записи удаляет cleanup.
	if cs.now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.data, true
}

// Set сохраняет значение на ttl. При ttl <= 0 ничего не сохраняется.
func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = &cacheEntry{
		data:      value,
		expiresAt: cs.now().Add(ttl),
	}
}

// InvalidateByPrefix удаляет все ключи с префиксом prefix.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
}

// InvalidateCatalog сбрасывает закэшированный каталог.
func (cs *CacheService) InvalidateCatalog() {
	cs.InvalidateByPrefix(catalogCachePrefix)
}

// Len возвращает число записей вместе с просроченными.
func (cs *CacheService) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.cache)
}

func (cs *CacheService) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.removeExpired()
		}
	}
}

func (cs *CacheService) removeExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	for key, entry := range cs.cache {
		if now.After(entry.expiresAt) {
			delete(cs.cache, key)
		}
	}
}

const catalogCachePrefix = "catalog:"

// CatalogCacheKey возвращает ключ полного списка активностей.
func CatalogCacheKey() string {
	return catalogCachePrefix + "all"
}

// GetOrSet берёт значение из кэша, а при промахе вычисляет его через fn и сохраняет.
func (cs *CacheService) GetOrSet(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fn func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if value, found := cs.Get(key); found {
		return value, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	cs.Set(key, value, ttl)

	return value, nil
}
