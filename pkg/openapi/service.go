package openapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// Service renders the contract of the current registry contents. The
// registry is read on every call; only the projection is cached.
type Service struct {
	registry storage.SchemaRegistry
	cache    *DocumentCache
	info     Info
	metrics  *observability.Metrics
	logger   logrus.FieldLogger

	mu      sync.Mutex
	current string // fingerprint of the last served collection set
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(registry storage.SchemaRegistry, cache *DocumentCache, info Info, metrics *observability.Metrics, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		registry: registry,
		cache:    cache,
		info:     info,
		metrics:  metrics,
		logger:   logger,
	}
}

// Document returns the rendered document for the registry's collections
func (s *Service) Document(ctx context.Context, format Format) ([]byte, error) {
	collections, err := s.registry.ListCollections(ctx)
	if err != nil {
		s.metrics.StorageError("list_collections")
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	if s.cache == nil {
		return s.render(collections, format)
	}

	fingerprint, err := Fingerprint(collections)
	if err != nil {
		return nil, err
	}
	if stale := s.advance(fingerprint); stale != "" {
		s.cache.Evict(ctx, stale)
	}
	key := cacheKey(fingerprint, format)
	if data, ok := s.cache.Get(ctx, key); ok {
		return data, nil
	}

	data, err := s.render(collections, format)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, data)
	return data, nil
}

// advance records fingerprint as current and returns the one it replaced,
// if any
func (s *Service) advance(fingerprint string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = fingerprint
	if prev == fingerprint {
		return ""
	}
	return prev
}

func (s *Service) render(collections []*schema.CollectionConfig, format Format) ([]byte, error) {
	start := time.Now()
	data, err := Render(Generate(collections, s.info), format)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveGeneration(time.Since(start))
	s.logger.WithFields(logrus.Fields{
		"collections": len(collections),
		"format":      format,
		"bytes":       len(data),
	}).Debug("openapi document generated")
	return data, nil
}
