package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheService_GetOrSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cs := NewCacheService(ctx)

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return []string{"a"}, nil
	}

	v, err := cs.GetOrSet(ctx, CatalogCacheKey(), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v)

	_, err = cs.GetOrSet(ctx, CatalogCacheKey(), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCacheService_ErrorsAreNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cs := NewCacheService(ctx)

	_, err := cs.GetOrSet(ctx, "k", time.Minute, func(context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 0, cs.Len())
}

func TestCacheService_Expiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cs := NewCacheService(ctx)

	now := time.Now()
	cs.now = func() time.Time { return now }
	cs.Set("k", 1, time.Second)

	_, ok := cs.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = cs.Get("k")
	assert.False(t, ok)

	cs.removeExpired()
	assert.Equal(t, 0, cs.Len())
}

func TestCacheService_ZeroTTLDisablesCaching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cs := NewCacheService(ctx)

	cs.Set("k", 1, 0)
	_, ok := cs.Get("k")
	assert.False(t, ok)
}

func TestCacheService_InvalidateCatalog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cs := NewCacheService(ctx)

	cs.Set(CatalogCacheKey(), 1, time.Minute)
	cs.Set("other", 2, time.Minute)
	cs.InvalidateCatalog()

	_, ok := cs.Get(CatalogCacheKey())
	assert.False(t, ok)
	_, ok = cs.Get("other")
	assert.True(t, ok)
}
