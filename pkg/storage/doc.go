// Package storage provides pluggable persistence backends for collection
// schemas, their documents and the media assets those documents reference.
//
// # Overview
//
// Three stores take part in content management and none of them shares a
// transaction with another:
//
//   - SchemaRegistry: CollectionConfig records keyed by slug
//   - DocumentStore: documents grouped in one collection per slug
//   - AssetStore: externally hosted binary assets addressed by public id
//
// Backends:
//
//   - FileSystemRegistry (this package): one JSON file per collection
//   - bolt.DocumentStore (pkg/storage/bolt): embedded bbolt database
//   - postgres.Registry and postgres.DocumentStore (pkg/storage/postgres): JSONB tables
//   - postgres.S3AssetStore (pkg/storage/postgres): S3 compatible object storage
//
// # Batch limits
//
// DocumentStore.DeleteBatch and AssetStore.BulkDelete each accept at most
// BatchLimit() identifiers per call. Callers chunk larger inputs. A document
// batch is atomic on its own; there is no atomicity across batches. An asset
// batch reports a per-id outcome and never rolls back.
//
// # Errors
//
// Backends return ErrNotFound (wrapped) when a slug or document is absent
// and ErrAlreadyExists when creating a slug that is taken. Compare with
// errors.Is.
package storage
