package openapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage/postgres"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *postgres.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := storage.DefaultConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	client, err := postgres.NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestDocumentCache_LocalOnly(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cache := NewDocumentCache(CacheConfig{Size: 2, TTL: time.Minute, Metrics: metrics})
	ctx := context.Background()

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	cache.Set(ctx, "a", []byte("doc-a"))
	data, ok := cache.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "doc-a", string(data))

	// Size bound evicts the oldest entry
	cache.Set(ctx, "b", []byte("doc-b"))
	cache.Set(ctx, "c", []byte("doc-c"))
	assert.Equal(t, 2, cache.local.Len())
	assert.False(t, cache.local.Contains("a"))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("openapi", "l1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("openapi")))
}

func TestDocumentCache_RemoteTier(t *testing.T) {
	mr, client := newRedis(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cache := NewDocumentCache(CacheConfig{TTL: time.Minute, Remote: client, Metrics: metrics})
	ctx := context.Background()

	cache.Set(ctx, "openapi:abc:json", []byte(`{"openapi":"3.0.0"}`))
	assert.True(t, mr.Exists("headless:openapi:abc:json"))
	assert.Equal(t, time.Minute, mr.TTL("headless:openapi:abc:json"))

	// A fresh replica sees the shared entry and promotes it into L1
	replica := NewDocumentCache(CacheConfig{TTL: time.Minute, Remote: client, Metrics: metrics})
	data, ok := replica.Get(ctx, "openapi:abc:json")
	require.True(t, ok)
	assert.JSONEq(t, `{"openapi":"3.0.0"}`, string(data))
	assert.Equal(t, 1, replica.local.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("openapi", "l2")))

	cache.Set(ctx, "openapi:abc:yaml", []byte("openapi: 3.0.0"))
	cache.Evict(ctx, "abc")
	assert.False(t, mr.Exists("headless:openapi:abc:json"))
	assert.False(t, mr.Exists("headless:openapi:abc:yaml"))
	assert.False(t, cache.local.Contains("openapi:abc:json"))

	// The replica's L1 copy lives until its TTL
	_, ok = replica.Get(ctx, "openapi:abc:json")
	assert.True(t, ok)
}

type brokenRemote struct{}

func (brokenRemote) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenRemote) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenRemote) Delete(context.Context, ...string) error {
	return errors.New("connection refused")
}

func TestDocumentCache_RemoteFailureDegradesToMiss(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cache := NewDocumentCache(CacheConfig{Remote: brokenRemote{}, Logger: logger})
	ctx := context.Background()

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	cache.Set(ctx, "k", []byte("v"))
	data, ok := cache.Get(ctx, "k")
	require.True(t, ok, "L1 still serves")
	assert.Equal(t, "v", string(data))

	cache.Evict(ctx, "k")
	assert.Len(t, hook.AllEntries(), 3)
}
