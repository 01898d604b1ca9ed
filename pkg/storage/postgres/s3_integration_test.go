//go:build integration

package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// setupMinIO starts MinIO, creates the bucket and returns an asset store plus
// a raw client for seeding objects
func setupMinIO(t *testing.T) (*S3AssetStore, *s3.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "Failed to start MinIO container")

	host, err := minioContainer.Host(ctx)
	require.NoError(t, err)
	port, err := minioContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)

	cfg := storage.DefaultConfig()
	cfg.S3Endpoint = "http://" + host + ":" + port.Port()
	cfg.S3AccessKey = "minioadmin"
	cfg.S3SecretKey = "minioadmin"
	cfg.S3Bucket = "media"
	cfg.S3UsePathStyle = true
	cfg.S3KeyPrefix = "uploads/"

	store, err := NewS3AssetStore(ctx, cfg)
	require.NoError(t, err, "Failed to create asset store")
	raw := store.client.(*s3.Client)

	_, err = raw.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.S3Bucket)})
	require.NoError(t, err)

	cleanup := func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate MinIO container: %v", err)
		}
	}
	return store, raw, cleanup
}

func TestS3AssetStore_BulkDelete_Integration(t *testing.T) {
	store, raw, cleanup := setupMinIO(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.HealthCheck(ctx))

	for _, id := range []string{"pid1", "pid2"} {
		_, err := raw.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String("media"),
			Key:    aws.String("uploads/" + id),
			Body:   strings.NewReader("image bytes"),
		})
		require.NoError(t, err)
	}

	outcomes, err := store.BulkDelete(ctx, []string{"pid1", "pid2", "never-uploaded"})
	require.NoError(t, err)
	assert.True(t, outcomes["pid1"].Deleted)
	assert.True(t, outcomes["pid2"].Deleted)
	// S3 reports deleting a missing key as success
	assert.True(t, outcomes["never-uploaded"].Deleted)

	list, err := raw.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: aws.String("media")})
	require.NoError(t, err)
	assert.Empty(t, list.Contents)
}
