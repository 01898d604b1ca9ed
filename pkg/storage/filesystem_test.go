package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
)

func newTestRegistry(t *testing.T) *FileSystemRegistry {
	t.Helper()
	reg, err := NewFileSystemRegistry(filepath.Join(t.TempDir(), "schemas"))
	require.NoError(t, err)
	return reg
}

func TestNewFileSystemRegistry(t *testing.T) {
	t.Run("creates root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "nested", "schemas")
		reg, err := NewFileSystemRegistry(root)
		require.NoError(t, err)
		assert.Equal(t, root, reg.rootDir)

		_, err = os.Stat(root)
		assert.NoError(t, err)
	})

	t.Run("fails when root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := NewFileSystemRegistry(filepath.Join(file, "schemas"))
		assert.Error(t, err)
	})
}

func TestFileSystemRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	posts := &schema.CollectionConfig{
		Slug:  "posts",
		Label: "Posts",
		Kind:  schema.KindCollection,
		Fields: []schema.Field{
			{Name: "title", Type: schema.TypeText, Required: true},
			{Name: "cover", Type: schema.TypeMedia},
		},
	}
	require.NoError(t, reg.CreateCollection(ctx, posts))
	assert.False(t, posts.CreatedAt.IsZero())

	got, err := reg.GetCollection(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, "Posts", got.Label)
	assert.Equal(t, posts.Fields, got.Fields)

	err = reg.CreateCollection(ctx, &schema.CollectionConfig{Slug: "posts", Label: "Again"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, reg.CreateCollection(ctx, &schema.CollectionConfig{Slug: "authors", Label: "Authors"}))

	list, err := reg.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "authors", list[0].Slug)
	assert.Equal(t, "posts", list[1].Slug)

	require.NoError(t, reg.DeleteCollection(ctx, "posts"))
	_, err = reg.GetCollection(ctx, "posts")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, reg.DeleteCollection(ctx, "posts"), ErrNotFound)
}

func TestFileSystemRegistry_IgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	require.NoError(t, os.WriteFile(filepath.Join(reg.rootDir, "README.txt"), []byte("notes"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(reg.rootDir, "backup"), 0755))

	list, err := reg.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFileSystemRegistry_CorruptFile(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	require.NoError(t, os.WriteFile(filepath.Join(reg.rootDir, "broken.json"), []byte("{"), 0644))

	_, err := reg.GetCollection(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = reg.ListCollections(ctx)
	assert.Error(t, err)
}

func TestFileSystemRegistry_RejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	for _, slug := range []string{"", "../etc", "a/b", `a\b`, ".hidden"} {
		_, err := reg.GetCollection(ctx, slug)
		assert.ErrorIsf(t, err, ErrNotFound, "get %q", slug)
		assert.ErrorIsf(t, reg.DeleteCollection(ctx, slug), ErrNotFound, "delete %q", slug)
	}

	err := reg.CreateCollection(ctx, &schema.CollectionConfig{Slug: ".hidden", Label: "Hidden"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileSystemRegistry_HealthCheck(t *testing.T) {
	reg := newTestRegistry(t)
	assert.NoError(t, reg.HealthCheck(context.Background()))

	require.NoError(t, os.RemoveAll(reg.rootDir))
	assert.Error(t, reg.HealthCheck(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "filesystem", cfg.Type)
	assert.Equal(t, DefaultDocumentBatchLimit, cfg.DocumentBatchLimit)
	assert.Equal(t, DefaultAssetBatchLimit, cfg.AssetBatchLimit)
	assert.False(t, cfg.AssetsEnabled())

	cfg.S3Bucket = "media"
	assert.True(t, cfg.AssetsEnabled())
}
