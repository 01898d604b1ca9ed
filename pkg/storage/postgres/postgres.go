// Package postgres implements the schema registry and document store on
// PostgreSQL, the asset store on S3 compatible object storage, and a Redis
// client used for derived-document caching.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

var tracer = otel.Tracer("headless/storage/postgres")

// Registry implements storage.SchemaRegistry on the collections table
type Registry struct {
	db *sql.DB
}

// NewRegistry creates a registry on an open database
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// GetCollection implements storage.SchemaRegistry.GetCollection
func (r *Registry) GetCollection(ctx context.Context, slug string) (*schema.CollectionConfig, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT config FROM collections WHERE slug = $1`, slug).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", slug, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	var cfg schema.CollectionConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collection %s: %w", slug, err)
	}
	return &cfg, nil
}

// ListCollections implements storage.SchemaRegistry.ListCollections
func (r *Registry) ListCollections(ctx context.Context) ([]*schema.CollectionConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT config FROM collections ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []*schema.CollectionConfig
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		var cfg schema.CollectionConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal collection: %w", err)
		}
		collections = append(collections, &cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	return collections, nil
}

// CreateCollection implements storage.SchemaRegistry.CreateCollection
func (r *Registry) CreateCollection(ctx context.Context, cfg *schema.CollectionConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO collections (slug, config) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
		cfg.Slug, data)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("collection %s: %w", cfg.Slug, storage.ErrAlreadyExists)
	}
	return nil
}

// DeleteCollection implements storage.SchemaRegistry.DeleteCollection
func (r *Registry) DeleteCollection(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("collection %s: %w", slug, storage.ErrNotFound)
	}
	return nil
}

// HealthCheck pings the database
func (r *Registry) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// DocumentStore implements storage.DocumentStore on the documents table
type DocumentStore struct {
	db         *sql.DB
	batchLimit int
}

// NewDocumentStore creates a document store on an open database
func NewDocumentStore(db *sql.DB, batchLimit int) *DocumentStore {
	if batchLimit <= 0 {
		batchLimit = storage.DefaultDocumentBatchLimit
	}
	return &DocumentStore{db: db, batchLimit: batchLimit}
}

// BatchLimit implements storage.DocumentStore.BatchLimit
func (s *DocumentStore) BatchLimit() int {
	return s.batchLimit
}

// ListDocuments implements storage.DocumentStore.ListDocuments
func (s *DocumentStore) ListDocuments(ctx context.Context, collection string) ([]schema.Document, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListDocuments",
		trace.WithAttributes(attribute.String("collection", collection)),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
		}
		docs = append(docs, schema.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "iteration failed")
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	span.SetAttributes(attribute.Int("documents.count", len(docs)))
	return docs, nil
}

// PutDocument implements storage.DocumentStore.PutDocument
func (s *DocumentStore) PutDocument(ctx context.Context, collection string, doc *schema.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, doc.ID, data)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// DeleteBatch implements storage.DocumentStore.DeleteBatch in one transaction
func (s *DocumentStore) DeleteBatch(ctx context.Context, collection string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > s.batchLimit {
		return fmt.Errorf("delete %d documents: %w (%d)", len(ids), storage.ErrBatchTooLarge, s.batchLimit)
	}

	ctx, span := tracer.Start(ctx, "Postgres.DeleteBatch",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("batch.size", len(ids)),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin failed")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch delete failed")
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = ANY($2)`,
		collection, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete batch: %w", err)
	}

	span.SetStatus(codes.Ok, "batch deleted")
	return nil
}
