package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes repeatable collections from singletons
type Kind string

const (
	KindCollection Kind = "collectionType"
	KindSingle     Kind = "singleType"
)

// Cardinality of a relation field
type Cardinality string

const (
	OneToOne   Cardinality = "oneToOne"
	OneToMany  Cardinality = "oneToMany"
	ManyToOne  Cardinality = "manyToOne"
	ManyToMany Cardinality = "manyToMany"
)

// CollectionConfig is the schema record of one content type
type CollectionConfig struct {
	Slug        string    `json:"slug" yaml:"slug" validate:"required,max=64,slug"`
	Label       string    `json:"label" yaml:"label" validate:"required,max=128"`
	LabelPlural string    `json:"labelPlural,omitempty" yaml:"labelPlural,omitempty" validate:"max=128"`
	Kind        Kind      `json:"kind" yaml:"kind" validate:"omitempty,oneof=collectionType singleType"`
	Fields      []Field   `json:"fields" yaml:"fields" validate:"dive"`
	CreatedAt   time.Time `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

// Field is one typed attribute of a collection
type Field struct {
	Name        string    `json:"name" yaml:"name" validate:"required,max=64,fieldname"`
	Type        FieldType `json:"type" yaml:"type" validate:"required,fieldtype"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Unique      bool      `json:"unique,omitempty" yaml:"unique,omitempty"`
	Private     bool      `json:"private,omitempty" yaml:"private,omitempty"`
	EnumOptions []string  `json:"enumOptions,omitempty" yaml:"enumOptions,omitempty"`
	Relation    *Relation `json:"relation,omitempty" yaml:"relation,omitempty"`
	Component   string    `json:"component,omitempty" yaml:"component,omitempty"`
	Components  []string  `json:"components,omitempty" yaml:"components,omitempty"`
	Multiple    bool      `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// Relation configures a relation field
type Relation struct {
	Target      string      `json:"target" yaml:"target"`
	Cardinality Cardinality `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
}

// MediaReference is the stored value of a media field. Only PublicID
// identifies the hosted asset; the rest is descriptive.
type MediaReference struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url,omitempty"`
	Format   string `json:"format,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
}

// Document is a stored entry: an identifier plus an opaque field map
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// SingleTypeDocumentID returns the fixed document id used by single types
func SingleTypeDocumentID(slug string) string {
	return slug + "-single"
}

// IsSingle reports whether the collection stores exactly one document
func (c *CollectionConfig) IsSingle() bool {
	return c.Kind == KindSingle
}

// MediaFields returns the media-typed fields in declaration order
func (c *CollectionConfig) MediaFields() []Field {
	var out []Field
	for _, f := range c.Fields {
		if f.Type == TypeMedia {
			out = append(out, f)
		}
	}
	return out
}

// RequiredFieldNames returns the names of required fields in declaration order
func (c *CollectionConfig) RequiredFieldNames() []string {
	var names []string
	for _, f := range c.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field looks up a field by name
func (c *CollectionConfig) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ComponentName derives the OpenAPI component name from the display label
func ComponentName(label string) string {
	return strings.Join(strings.Fields(label), "")
}

// ComponentName returns the component name of this collection
func (c *CollectionConfig) ComponentName() string {
	return ComponentName(c.Label)
}

// UnmarshalJSON defaults Kind for records written before singletons existed
func (c *CollectionConfig) UnmarshalJSON(data []byte) error {
	type alias CollectionConfig
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("invalid collection config: %w", err)
	}
	if a.Kind == "" {
		a.Kind = KindCollection
	}
	*c = CollectionConfig(a)
	return nil
}
