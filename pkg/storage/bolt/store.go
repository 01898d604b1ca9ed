// Package bolt implements storage.DocumentStore on an embedded bbolt file.
//
// Every collection is a nested bucket under a single root bucket; document
// ids are keys and field maps are stored as JSON values. A collection bucket
// is dropped once its last document is deleted.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

var rootBucket = []byte("documents")

// DocumentStore is a bbolt backed storage.DocumentStore
type DocumentStore struct {
	db         *bbolt.DB
	batchLimit int
}

// Open opens or creates the database at path
func Open(path string, batchLimit int) (*DocumentStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init bolt database: %w", err)
	}

	if batchLimit <= 0 {
		batchLimit = storage.DefaultDocumentBatchLimit
	}
	return &DocumentStore{db: db, batchLimit: batchLimit}, nil
}

// BatchLimit implements storage.DocumentStore.BatchLimit
func (s *DocumentStore) BatchLimit() int {
	return s.batchLimit
}

// ListDocuments implements storage.DocumentStore.ListDocuments
func (s *DocumentStore) ListDocuments(ctx context.Context, collection string) ([]schema.Document, error) {
	var docs []schema.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(rootBucket).Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var fields map[string]any
			if err := json.Unmarshal(v, &fields); err != nil {
				return fmt.Errorf("document %s/%s: %w", collection, k, err)
			}
			docs = append(docs, schema.Document{ID: string(k), Fields: fields})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// PutDocument implements storage.DocumentStore.PutDocument. An empty ID is
// replaced by a generated one.
func (s *DocumentStore) PutDocument(ctx context.Context, collection string, doc *schema.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("failed to create collection bucket: %w", err)
		}
		return b.Put([]byte(doc.ID), data)
	})
}

// DeleteBatch implements storage.DocumentStore.DeleteBatch. The whole batch
// is one bbolt transaction.
func (s *DocumentStore) DeleteBatch(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > s.batchLimit {
		return fmt.Errorf("delete %d documents: %w (%d)", len(ids), storage.ErrBatchTooLarge, s.batchLimit)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(rootBucket)
		b := root.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
		}
		if k, _ := b.Cursor().First(); k == nil {
			return root.DeleteBucket([]byte(collection))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete document batch: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is readable
func (s *DocumentStore) HealthCheck(ctx context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(rootBucket) == nil {
			return errors.New("bolt root bucket missing")
		}
		return nil
	})
}

// Close closes the underlying database
func (s *DocumentStore) Close() error {
	return s.db.Close()
}
