package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

const collectionFileExt = ".json"

// FileSystemRegistry implements SchemaRegistry with one JSON file per slug
type FileSystemRegistry struct {
	rootDir string
	mu      sync.RWMutex
}

// NewFileSystemRegistry creates a new filesystem-based registry
func NewFileSystemRegistry(rootDir string) (*FileSystemRegistry, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FileSystemRegistry{rootDir: rootDir}, nil
}

func (s *FileSystemRegistry) path(slug string) (string, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || strings.HasPrefix(slug, ".") {
		return "", fmt.Errorf("invalid slug %q", slug)
	}
	return filepath.Join(s.rootDir, slug+collectionFileExt), nil
}

// lookupPath is path for reads and deletes. A slug that can never have been
// stored has no record, so it is reported as ErrNotFound.
func (s *FileSystemRegistry) lookupPath(slug string) (string, error) {
	file, err := s.path(slug)
	if err != nil {
		return "", fmt.Errorf("%w: %w", err, ErrNotFound)
	}
	return file, nil
}

// GetCollection implements SchemaRegistry.GetCollection
func (s *FileSystemRegistry) GetCollection(ctx context.Context, slug string) (*schema.CollectionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(slug)
}

func (s *FileSystemRegistry) read(slug string) (*schema.CollectionConfig, error) {
	file, err := s.lookupPath(slug)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("collection %s: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	var cfg schema.CollectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collection %s: %w", slug, err)
	}
	return &cfg, nil
}

// ListCollections implements SchemaRegistry.ListCollections
func (s *FileSystemRegistry) ListCollections(ctx context.Context) ([]*schema.CollectionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	collections := make([]*schema.CollectionConfig, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), collectionFileExt) {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), collectionFileExt)
		cfg, err := s.read(slug)
		if err != nil {
			return nil, fmt.Errorf("failed to get collection %s: %w", slug, err)
		}
		collections = append(collections, cfg)
	}

	sort.Slice(collections, func(i, j int) bool {
		return collections[i].Slug < collections[j].Slug
	})
	return collections, nil
}

// CreateCollection implements SchemaRegistry.CreateCollection
func (s *FileSystemRegistry) CreateCollection(ctx context.Context, cfg *schema.CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.path(cfg.Slug)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	cfg.CreatedAt, cfg.UpdatedAt = now, now
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("collection %s: %w", cfg.Slug, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create collection file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(file)
		return fmt.Errorf("failed to write collection file: %w", err)
	}
	return f.Close()
}

// DeleteCollection implements SchemaRegistry.DeleteCollection
func (s *FileSystemRegistry) DeleteCollection(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.lookupPath(slug)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("collection %s: %w", slug, ErrNotFound)
		}
		return fmt.Errorf("failed to delete collection file: %w", err)
	}
	return nil
}

// HealthCheck verifies the root directory is still reachable
func (s *FileSystemRegistry) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(s.rootDir); err != nil {
		return fmt.Errorf("filesystem registry unavailable: %w", err)
	}
	return nil
}
