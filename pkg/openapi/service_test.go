package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

type memoryRegistry struct {
	mu          sync.Mutex
	collections map[string]*schema.CollectionConfig
	lists       int
	err         error
}

func newMemoryRegistry(cfgs ...*schema.CollectionConfig) *memoryRegistry {
	r := &memoryRegistry{collections: map[string]*schema.CollectionConfig{}}
	for _, c := range cfgs {
		r.collections[c.Slug] = c
	}
	return r
}

func (r *memoryRegistry) GetCollection(_ context.Context, slug string) (*schema.CollectionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

func (r *memoryRegistry) ListCollections(context.Context) ([]*schema.CollectionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*schema.CollectionConfig, 0, len(r.collections))
	for _, c := range r.collections {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRegistry) CreateCollection(_ context.Context, cfg *schema.CollectionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[cfg.Slug] = cfg
	return nil
}

func (r *memoryRegistry) DeleteCollection(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, slug)
	return nil
}

func TestService_CachesProjectionNotRegistry(t *testing.T) {
	registry := newMemoryRegistry(postsCollection())
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := NewService(registry, NewDocumentCache(CacheConfig{Metrics: metrics}), Info{}, metrics, nil)
	ctx := context.Background()

	first, err := svc.Document(ctx, FormatJSON)
	require.NoError(t, err)
	second, err := svc.Document(ctx, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, registry.lists, "registry is read on every call")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.OpenAPIGenerationsTotal))

	// A schema change produces a new fingerprint and a fresh document
	require.NoError(t, registry.CreateCollection(ctx, &schema.CollectionConfig{Slug: "tags", Label: "Tags"}))
	third, err := svc.Document(ctx, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(third), `"/api/tags"`)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.OpenAPIGenerationsTotal))
	assert.Equal(t, 1, svc.cache.local.Len(), "the superseded document is evicted")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(third, &doc))
	assert.Len(t, doc["paths"], 4)
}

func TestService_FormatsCachedSeparately(t *testing.T) {
	svc := NewService(newMemoryRegistry(postsCollection()), NewDocumentCache(CacheConfig{}), Info{}, nil, nil)

	j, err := svc.Document(context.Background(), FormatJSON)
	require.NoError(t, err)
	y, err := svc.Document(context.Background(), FormatYAML)
	require.NoError(t, err)

	assert.True(t, json.Valid(j))
	assert.False(t, json.Valid(y))
	assert.Equal(t, 2, svc.cache.local.Len())
}

func TestService_WithoutCache(t *testing.T) {
	svc := NewService(newMemoryRegistry(), nil, Info{}, nil, nil)
	data, err := svc.Document(context.Background(), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"paths": {}`)
}

func TestService_RegistryFailure(t *testing.T) {
	registry := newMemoryRegistry()
	registry.err = errors.New("disk unavailable")
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := NewService(registry, nil, Info{}, metrics, nil)

	_, err := svc.Document(context.Background(), FormatJSON)
	assert.ErrorContains(t, err, "disk unavailable")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StorageErrorsTotal.WithLabelValues("list_collections")))
}
