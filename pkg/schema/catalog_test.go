package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllFieldTypes_HaveCategory(t *testing.T) {
	types := AllFieldTypes()
	require.Len(t, types, 18)

	seen := make(map[FieldType]bool)
	for _, ft := range types {
		assert.Falsef(t, seen[ft], "duplicate catalog entry %s", ft)
		seen[ft] = true
		assert.Truef(t, ft.Valid(), "%s should be valid", ft)
		assert.NotEmptyf(t, ft.Category(), "%s has no category", ft)
	}
}

func TestFieldType_Category(t *testing.T) {
	tests := []struct {
		ft   FieldType
		want Category
	}{
		{TypeText, CategoryText},
		{TypeEnumeration, CategoryText},
		{TypeDecimal, CategoryNumber},
		{TypeTime, CategoryDate},
		{TypeBoolean, CategoryBoolean},
		{TypeMedia, CategoryMedia},
		{TypeRelation, CategoryRelation},
		{TypeDynamicZone, CategoryAdvanced},
		{FieldType("geo"), ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.ft), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ft.Category())
		})
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Label = "changed"
	assert.Equal(t, "Text", Catalog()[0].Label)
}

func TestComponentName(t *testing.T) {
	assert.Equal(t, "BlogPosts", ComponentName("Blog Posts"))
	assert.Equal(t, "BlogPosts", ComponentName("  Blog\tPosts\n"))
	assert.Equal(t, "Posts", ComponentName("Posts"))
	assert.Equal(t, "", ComponentName("   "))
}

func TestCollectionConfig_Helpers(t *testing.T) {
	cfg := &CollectionConfig{
		Slug:  "posts",
		Label: "Posts",
		Fields: []Field{
			{Name: "title", Type: TypeText, Required: true},
			{Name: "cover", Type: TypeMedia},
			{Name: "gallery", Type: TypeMedia, Multiple: true},
			{Name: "slug", Type: TypeUID, Required: true},
		},
	}

	assert.Equal(t, []string{"title", "slug"}, cfg.RequiredFieldNames())

	media := cfg.MediaFields()
	require.Len(t, media, 2)
	assert.Equal(t, "cover", media[0].Name)
	assert.Equal(t, "gallery", media[1].Name)

	f, ok := cfg.Field("slug")
	require.True(t, ok)
	assert.Equal(t, TypeUID, f.Type)
	_, ok = cfg.Field("missing")
	assert.False(t, ok)

	assert.Equal(t, "posts-single", SingleTypeDocumentID(cfg.Slug))
}

func TestCollectionConfig_UnmarshalDefaultsKind(t *testing.T) {
	var cfg CollectionConfig
	require.NoError(t, json.Unmarshal([]byte(`{"slug":"posts","label":"Posts","fields":[]}`), &cfg))
	assert.Equal(t, KindCollection, cfg.Kind)
	assert.False(t, cfg.IsSingle())

	require.NoError(t, json.Unmarshal([]byte(`{"slug":"home","label":"Home","kind":"singleType"}`), &cfg))
	assert.True(t, cfg.IsSingle())

	assert.Error(t, json.Unmarshal([]byte(`{"slug":`), &cfg))
}
