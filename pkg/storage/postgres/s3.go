package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// s3API is the subset of the S3 client used by S3AssetStore
type s3API interface {
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3AssetStore implements storage.AssetStore on an S3 compatible bucket.
// A public id maps to the object key prefix+publicId.
type S3AssetStore struct {
	client     s3API
	bucket     string
	prefix     string
	batchLimit int
}

// NewS3AssetStore creates an asset store from storage configuration
func NewS3AssetStore(ctx context.Context, cfg storage.Config) (*S3AssetStore, error) {
	var awsConfig aws.Config
	var err error

	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		// Use static credentials (for MinIO or AWS with explicit keys)
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey,
				cfg.S3SecretKey,
				"",
			)),
		)
	} else {
		// Use default credential chain (IAM roles, env vars, etc.)
		awsConfig, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.S3Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return newS3AssetStore(client, cfg.S3Bucket, cfg.S3KeyPrefix, cfg.AssetBatchLimit), nil
}

func newS3AssetStore(client s3API, bucket, prefix string, batchLimit int) *S3AssetStore {
	if batchLimit <= 0 {
		batchLimit = storage.DefaultAssetBatchLimit
	}
	return &S3AssetStore{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		batchLimit: batchLimit,
	}
}

// BatchLimit implements storage.AssetStore.BatchLimit
func (c *S3AssetStore) BatchLimit() int {
	return c.batchLimit
}

// BulkDelete implements storage.AssetStore.BulkDelete with one DeleteObjects call
func (c *S3AssetStore) BulkDelete(ctx context.Context, ids []string) (map[string]storage.AssetOutcome, error) {
	outcomes := make(map[string]storage.AssetOutcome, len(ids))
	if len(ids) == 0 {
		return outcomes, nil
	}
	if len(ids) > c.batchLimit {
		return nil, fmt.Errorf("delete %d assets: %w (%d)", len(ids), storage.ErrBatchTooLarge, c.batchLimit)
	}

	ctx, span := tracer.Start(ctx, "S3.DeleteObjects",
		trace.WithAttributes(
			attribute.String("s3.operation", "DeleteObjects"),
			attribute.String("s3.bucket", c.bucket),
			attribute.Int("batch.size", len(ids)),
		),
	)
	defer span.End()

	objects := make([]types.ObjectIdentifier, 0, len(ids))
	for _, id := range ids {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(c.prefix + id)})
	}

	out, err := c.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(c.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(false)},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete objects")
		return nil, fmt.Errorf("failed to delete objects from s3: %w", err)
	}

	for _, d := range out.Deleted {
		outcomes[c.publicID(aws.ToString(d.Key))] = storage.AssetOutcome{Deleted: true}
	}
	for _, e := range out.Errors {
		outcomes[c.publicID(aws.ToString(e.Key))] = storage.AssetOutcome{
			Code:    aws.ToString(e.Code),
			Message: aws.ToString(e.Message),
		}
	}
	for _, id := range ids {
		if _, ok := outcomes[id]; !ok {
			outcomes[id] = storage.AssetOutcome{Code: "NoResult", Message: "object not reported by delete response"}
		}
	}

	span.SetAttributes(attribute.Int("s3.errors", len(out.Errors)))
	if len(out.Errors) > 0 {
		span.SetStatus(codes.Error, "some objects were not deleted")
	} else {
		span.SetStatus(codes.Ok, "objects deleted")
	}
	return outcomes, nil
}

func (c *S3AssetStore) publicID(key string) string {
	return strings.TrimPrefix(key, c.prefix)
}

// HealthCheck verifies S3 connectivity
func (c *S3AssetStore) HealthCheck(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}
