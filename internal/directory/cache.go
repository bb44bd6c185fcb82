package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

// Cache stores tenants by subdomain
type Cache interface {
	Get(ctx context.Context, subdomain string) (*model.Tenant, bool, error)
	Set(ctx context.Context, tenant *model.Tenant) error
	Delete(ctx context.Context, subdomain string) error
}

// Cached puts a read-through cache in front of subdomain lookups. Only found
// tenants are cached; publication evicts the entry. Cache failures are logged
// and the lookup falls through to the wrapped directory.
type Cached struct {
	next  Directory
	cache Cache
}

var _ Directory = (*Cached)(nil)

// NewCached wraps next with cache
func NewCached(next Directory, cache Cache) *Cached {
	return &Cached{next: next, cache: cache}
}

// LookupBySubdomain serves from cache when possible
func (c *Cached) LookupBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	log := logger.FromContext(ctx)

	tenant, ok, err := c.cache.Get(ctx, subdomain)
	switch {
	case err != nil:
		prometheus.RecordDirectoryLookup("cache", "error")
		log.Warn("Tenant cache read failed", zap.String("subdomain", subdomain), zap.Error(err))
	case ok:
		prometheus.RecordDirectoryLookup("cache", "hit")
		return tenant, nil
	default:
		prometheus.RecordDirectoryLookup("cache", "miss")
	}

	tenant, err = c.next.LookupBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, tenant); err != nil {
		log.Warn("Tenant cache write failed", zap.String("subdomain", subdomain), zap.Error(err))
	}
	return tenant, nil
}

// LookupByOwner is not cached; it only serves authenticated dashboard calls
func (c *Cached) LookupByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Tenant, error) {
	return c.next.LookupByOwner(ctx, ownerID)
}

// Create registers through the wrapped directory
func (c *Cached) Create(ctx context.Context, in CreateTenantInput) (*model.Tenant, error) {
	return c.next.Create(ctx, in)
}

// Publish publishes and evicts the cached entry
func (c *Cached) Publish(ctx context.Context, tenant *model.Tenant) (*model.Tenant, error) {
	updated, err := c.next.Publish(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Delete(ctx, updated.Subdomain); err != nil {
		logger.FromContext(ctx).Error("Tenant cache eviction failed",
			zap.String("subdomain", updated.Subdomain), zap.Error(err))
	}
	return updated, nil
}

// RedisCache is a Cache on redis with a fixed TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a cache storing entries under "<prefix>:tenant:<subdomain>"
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// NewRedisClient parses url and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	return client, nil
}

// Key returns the redis key for subdomain
func (r *RedisCache) Key(subdomain string) string {
	return r.prefix + ":tenant:" + subdomain
}

// Get loads the cached tenant
func (r *RedisCache) Get(ctx context.Context, subdomain string) (*model.Tenant, bool, error) {
	raw, err := r.client.Get(ctx, r.Key(subdomain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	var tenant model.Tenant
	if err := json.Unmarshal(raw, &tenant); err != nil {
		return nil, false, errors.Wrap(err, "decode cached tenant")
	}
	return &tenant, true, nil
}

// Set stores tenant with the cache TTL
func (r *RedisCache) Set(ctx context.Context, tenant *model.Tenant) error {
	raw, err := json.Marshal(tenant)
	if err != nil {
		return errors.Wrap(err, "encode tenant")
	}
	return errors.Wrap(r.client.Set(ctx, r.Key(tenant.Subdomain), raw, r.ttl).Err(), "redis set")
}

// Delete evicts subdomain
func (r *RedisCache) Delete(ctx context.Context, subdomain string) error {
	return errors.Wrap(r.client.Del(ctx, r.Key(subdomain)).Err(), "redis del")
}
