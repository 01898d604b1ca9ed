package openapi

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
)

const cacheName = "openapi"

// RemoteCache is a shared byte cache, implemented by the Redis client
type RemoteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheConfig configures a DocumentCache
type CacheConfig struct {
	Size    int
	TTL     time.Duration
	Remote  RemoteCache
	Metrics *observability.Metrics
	Logger  logrus.FieldLogger
}

// DocumentCache memoises rendered documents by fingerprint. L1 is an
// in-process expiring LRU; L2 is an optional shared cache. Remote errors
// degrade to a miss.
type DocumentCache struct {
	local   *lru.LRU[string, []byte]
	remote  RemoteCache
	ttl     time.Duration
	metrics *observability.Metrics
	logger  logrus.FieldLogger
}

// NewDocumentCache creates a two-tier document cache
func NewDocumentCache(cfg CacheConfig) *DocumentCache {
	if cfg.Size <= 0 {
		cfg.Size = 64
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &DocumentCache{
		local:   lru.NewLRU[string, []byte](cfg.Size, nil, cfg.TTL),
		remote:  cfg.Remote,
		ttl:     cfg.TTL,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

func cacheKey(fingerprint string, format Format) string {
	return "openapi:" + fingerprint + ":" + string(format)
}

// Get returns the cached document for key
func (c *DocumentCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if data, ok := c.local.Get(key); ok {
		c.metrics.CacheHit(cacheName, "l1")
		return data, true
	}

	if c.remote != nil {
		data, ok, err := c.remote.Get(ctx, key)
		if err != nil {
			c.logger.WithError(err).WithField("key", key).Warn("remote cache read failed")
		} else if ok {
			c.local.Add(key, data)
			c.metrics.CacheHit(cacheName, "l2")
			return data, true
		}
	}

	c.metrics.CacheMiss(cacheName)
	return nil, false
}

// Set stores data under key in both tiers
func (c *DocumentCache) Set(ctx context.Context, key string, data []byte) {
	c.local.Add(key, data)
	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("remote cache write failed")
	}
}

// Evict drops every rendering of fingerprint from both tiers
func (c *DocumentCache) Evict(ctx context.Context, fingerprint string) {
	keys := []string{cacheKey(fingerprint, FormatJSON), cacheKey(fingerprint, FormatYAML)}
	for _, key := range keys {
		c.local.Remove(key)
	}
	if c.remote == nil {
		return
	}
	if err := c.remote.Delete(ctx, keys...); err != nil {
		c.logger.WithError(err).WithField("fingerprint", fingerprint).Warn("remote cache evict failed")
	}
}
