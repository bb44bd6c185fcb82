package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/apperror"
	"github.com/suteetoe/storefront/internal/model"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]model.Tenant
	getErr  error
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]model.Tenant{}}
}

func (m *memoryCache) Get(_ context.Context, subdomain string) (*model.Tenant, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	t, ok := m.entries[subdomain]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (m *memoryCache) Set(_ context.Context, t *model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[t.Subdomain] = *t
	return nil
}

func (m *memoryCache) Delete(_ context.Context, subdomain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, subdomain)
	return nil
}

type countingDirectory struct {
	Directory
	lookups int
}

func (c *countingDirectory) LookupBySubdomain(ctx context.Context, sub string) (*model.Tenant, error) {
	c.lookups++
	return c.Directory.LookupBySubdomain(ctx, sub)
}

func TestCachedServesRepeatLookupsFromCache(t *testing.T) {
	inner := &countingDirectory{Directory: newRepo(t)}
	cache := newMemoryCache()
	dir := NewCached(inner, cache)
	ctx := context.Background()

	_, err := dir.Create(ctx, validInput("cafe"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tenant, err := dir.LookupBySubdomain(ctx, "cafe")
		require.NoError(t, err)
		assert.Equal(t, "cafe", tenant.Subdomain)
	}
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedDoesNotCacheMisses(t *testing.T) {
	inner := &countingDirectory{Directory: newRepo(t)}
	dir := NewCached(inner, newMemoryCache())

	for i := 0; i < 2; i++ {
		_, err := dir.LookupBySubdomain(context.Background(), "ghost")
		assert.ErrorIs(t, err, apperror.ErrTenantNotFound)
	}
	assert.Equal(t, 2, inner.lookups)
}

func TestCachedPublishEvicts(t *testing.T) {
	cache := newMemoryCache()
	dir := NewCached(newRepo(t), cache)
	ctx := context.Background()

	_, err := dir.Create(ctx, validInput("studio"))
	require.NoError(t, err)

	tenant, err := dir.LookupBySubdomain(ctx, "studio")
	require.NoError(t, err)
	require.False(t, tenant.Published)

	_, err = dir.Publish(ctx, tenant)
	require.NoError(t, err)

	tenant, err = dir.LookupBySubdomain(ctx, "studio")
	require.NoError(t, err)
	assert.True(t, tenant.Published)
}

func TestCachedFallsThroughOnCacheError(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	dir := NewCached(newRepo(t), cache)
	ctx := context.Background()

	owner := uuid.New()
	in := validInput("cafe")
	in.OwnerID = owner
	_, err := dir.Create(ctx, in)
	require.NoError(t, err)

	tenant, err := dir.LookupBySubdomain(ctx, "cafe")
	require.NoError(t, err)
	assert.Equal(t, owner, tenant.OwnerID)

	byOwner, err := dir.LookupByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byOwner.ID)
}

func TestRedisCacheKey(t *testing.T) {
	c := NewRedisCache(nil, "storefront", 0)
	assert.Equal(t, "storefront:tenant:cafe", c.Key("cafe"))
}
