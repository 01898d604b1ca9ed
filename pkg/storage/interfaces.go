package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

var (
	// ErrNotFound is returned when a collection or document does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a collection whose slug is taken
	ErrAlreadyExists = errors.New("already exists")
	// ErrBatchTooLarge is returned when a caller exceeds a store's batch limit
	ErrBatchTooLarge = errors.New("batch exceeds limit")
)

const (
	// DefaultDocumentBatchLimit matches the mutation cap of the hosted document database
	DefaultDocumentBatchLimit = 500
	// DefaultAssetBatchLimit matches the bulk delete cap of the media host
	DefaultAssetBatchLimit = 100
)

// SchemaRegistry stores collection definitions
type SchemaRegistry interface {
	GetCollection(ctx context.Context, slug string) (*schema.CollectionConfig, error)
	ListCollections(ctx context.Context) ([]*schema.CollectionConfig, error)
	CreateCollection(ctx context.Context, cfg *schema.CollectionConfig) error
	DeleteCollection(ctx context.Context, slug string) error
}

// DocumentStore stores the documents of every collection
type DocumentStore interface {
	ListDocuments(ctx context.Context, collection string) ([]schema.Document, error)
	PutDocument(ctx context.Context, collection string, doc *schema.Document) error
	// DeleteBatch removes ids from collection atomically. len(ids) must not
	// exceed BatchLimit.
	DeleteBatch(ctx context.Context, collection string, ids []string) error
	BatchLimit() int
}

// AssetOutcome is the per-id result of a bulk asset deletion
type AssetOutcome struct {
	Deleted bool   `json:"deleted"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// AssetStore deletes hosted media assets
type AssetStore interface {
	// BulkDelete attempts to delete every id and reports an outcome per id.
	// An empty ids slice returns immediately without contacting the host.
	BulkDelete(ctx context.Context, ids []string) (map[string]AssetOutcome, error)
	BatchLimit() int
}

// HealthChecker is implemented by backends that can report connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config for storage backends
type Config struct {
	Type string // "filesystem" or "postgres"

	// Filesystem config
	FilesystemRoot string
	BoltPath       string

	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3KeyPrefix    string

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Batch limits
	DocumentBatchLimit int
	AssetBatchLimit    int

	// OpenAPI document cache
	CacheEnabled bool
	CacheTTL     time.Duration
	L1CacheSize  int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:               "filesystem",
		FilesystemRoot:     "/tmp/headless/schemas",
		BoltPath:           "/tmp/headless/documents.db",
		PostgresMaxConns:   20,
		PostgresMinConns:   2,
		PostgresTimeout:    10 * time.Second,
		S3Region:           "us-east-1",
		RedisDB:            0,
		RedisMaxRetries:    3,
		RedisPoolSize:      10,
		DocumentBatchLimit: DefaultDocumentBatchLimit,
		AssetBatchLimit:    DefaultAssetBatchLimit,
		CacheEnabled:       true,
		CacheTTL:           10 * time.Minute,
		L1CacheSize:        64,
	}
}

// AssetsEnabled reports whether an object store is configured
func (c Config) AssetsEnabled() bool {
	return c.S3Bucket != ""
}
