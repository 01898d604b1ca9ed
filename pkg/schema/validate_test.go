package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *CollectionConfig {
	return &CollectionConfig{
		Slug:  "posts",
		Label: "Posts",
		Kind:  KindCollection,
		Fields: []Field{
			{Name: "title", Type: TypeText, Required: true},
			{Name: "status", Type: TypeEnumeration, EnumOptions: []string{"draft", "published"}},
			{Name: "author", Type: TypeRelation, Relation: &Relation{Target: "users", Cardinality: ManyToOne}},
			{Name: "cover", Type: TypeMedia},
		},
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(c *CollectionConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(c *CollectionConfig) {}},
		{name: "missing slug", mutate: func(c *CollectionConfig) { c.Slug = "" }, wantErr: "Slug"},
		{name: "uppercase slug", mutate: func(c *CollectionConfig) { c.Slug = "Posts" }, wantErr: "slug"},
		{name: "slug with space", mutate: func(c *CollectionConfig) { c.Slug = "blog posts" }, wantErr: "slug"},
		{name: "missing label", mutate: func(c *CollectionConfig) { c.Label = "" }, wantErr: "Label"},
		{name: "whitespace label", mutate: func(c *CollectionConfig) { c.Label = "   " }, wantErr: "non-whitespace"},
		{name: "bad kind", mutate: func(c *CollectionConfig) { c.Kind = "list" }, wantErr: "Kind"},
		{name: "unknown field type", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "where", Type: "geo"})
		}, wantErr: "fieldtype"},
		{name: "bad field name", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "has space", Type: TypeText})
		}, wantErr: "fieldname"},
		{name: "duplicate field", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "title", Type: TypeTextarea})
		}, wantErr: "duplicate field name"},
		{name: "reserved field", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "createdAt", Type: TypeDateTime})
		}, wantErr: "reserved"},
		{name: "enumeration without options", mutate: func(c *CollectionConfig) {
			c.Fields[1].EnumOptions = nil
		}, wantErr: "at least one option"},
		{name: "relation without target", mutate: func(c *CollectionConfig) {
			c.Fields[2].Relation = nil
		}, wantErr: "target"},
		{name: "relation with bad cardinality", mutate: func(c *CollectionConfig) {
			c.Fields[2].Relation.Cardinality = "some"
		}, wantErr: "cardinality"},
		{name: "component without uid", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "seo", Type: TypeComponent})
		}, wantErr: "component uid"},
		{name: "dynamic zone without components", mutate: func(c *CollectionConfig) {
			c.Fields = append(c.Fields, Field{Name: "blocks", Type: TypeDynamicZone})
		}, wantErr: "dynamic zone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := v.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidator_AllTypesAccepted(t *testing.T) {
	v := NewValidator()
	for _, ft := range AllFieldTypes() {
		f := Field{Name: "f", Type: ft}
		switch ft {
		case TypeEnumeration:
			f.EnumOptions = []string{"a"}
		case TypeRelation:
			f.Relation = &Relation{Target: "other"}
		case TypeComponent:
			f.Component = "shared.seo"
		case TypeDynamicZone:
			f.Components = []string{"shared.hero"}
		}
		cfg := &CollectionConfig{Slug: "things", Label: "Things", Fields: []Field{f}}
		assert.NoErrorf(t, v.Validate(cfg), "type %s", ft)
	}
}

func TestCheckComponentCollision(t *testing.T) {
	existing := []*CollectionConfig{
		{Slug: "blog-posts", Label: "Blog Posts"},
		{Slug: "pages", Label: "Pages"},
	}

	err := CheckComponentCollision(existing, &CollectionConfig{Slug: "blogposts", Label: "BlogPosts"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComponentCollision)
	assert.Contains(t, err.Error(), "blog-posts")

	// same slug is an update, not a collision
	assert.NoError(t, CheckComponentCollision(existing, &CollectionConfig{Slug: "blog-posts", Label: "Blog  Posts"}))
	assert.NoError(t, CheckComponentCollision(existing, &CollectionConfig{Slug: "authors", Label: "Authors"}))
	assert.NoError(t, CheckComponentCollision(nil, &CollectionConfig{Slug: "authors", Label: "Authors"}))
}
