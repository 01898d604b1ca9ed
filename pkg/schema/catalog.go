package schema

// FieldType is the declared type tag of a field
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeTextarea    FieldType = "textarea"
	TypeRichText    FieldType = "richtext"
	TypeNumber      FieldType = "number"
	TypeDecimal     FieldType = "decimal"
	TypeBoolean     FieldType = "boolean"
	TypeDate        FieldType = "date"
	TypeDateTime    FieldType = "datetime"
	TypeTime        FieldType = "time"
	TypeEmail       FieldType = "email"
	TypePassword    FieldType = "password"
	TypeUID         FieldType = "uid"
	TypeJSON        FieldType = "json"
	TypeEnumeration FieldType = "enumeration"
	TypeMedia       FieldType = "media"
	TypeRelation    FieldType = "relation"
	TypeComponent   FieldType = "component"
	TypeDynamicZone FieldType = "dynamiczone"
)

// Category groups field types for the schema builder palette
type Category string

const (
	CategoryText     Category = "text"
	CategoryNumber   Category = "number"
	CategoryDate     Category = "date"
	CategoryBoolean  Category = "boolean"
	CategoryMedia    Category = "media"
	CategoryRelation Category = "relation"
	CategoryAdvanced Category = "advanced"
)

// CatalogEntry describes one field type for clients building schemas
type CatalogEntry struct {
	Type        FieldType `json:"type"`
	Category    Category  `json:"category"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

var catalog = []CatalogEntry{
	{TypeText, CategoryText, "Text", "Short single-line text"},
	{TypeTextarea, CategoryText, "Long text", "Multi-line plain text"},
	{TypeRichText, CategoryText, "Rich text", "Formatted content"},
	{TypeEmail, CategoryText, "Email", "Email address"},
	{TypePassword, CategoryText, "Password", "Hashed secret, never returned"},
	{TypeUID, CategoryText, "UID", "URL-safe unique identifier"},
	{TypeEnumeration, CategoryText, "Enumeration", "One value from a fixed list"},
	{TypeNumber, CategoryNumber, "Number", "Integer"},
	{TypeDecimal, CategoryNumber, "Decimal", "Floating point number"},
	{TypeDate, CategoryDate, "Date", "Calendar date"},
	{TypeDateTime, CategoryDate, "Date and time", "Timestamp with timezone"},
	{TypeTime, CategoryDate, "Time", "Time of day"},
	{TypeBoolean, CategoryBoolean, "Boolean", "True or false"},
	{TypeMedia, CategoryMedia, "Media", "One or more hosted assets"},
	{TypeRelation, CategoryRelation, "Relation", "Reference to another collection"},
	{TypeJSON, CategoryAdvanced, "JSON", "Arbitrary JSON value"},
	{TypeComponent, CategoryAdvanced, "Component", "Embedded reusable group of fields"},
	{TypeDynamicZone, CategoryAdvanced, "Dynamic zone", "Ordered list of components"},
}

// AllFieldTypes returns every field type in catalog order
func AllFieldTypes() []FieldType {
	out := make([]FieldType, len(catalog))
	for i, e := range catalog {
		out[i] = e.Type
	}
	return out
}

// Catalog returns a copy of the field type catalog
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether t belongs to the closed set
func (t FieldType) Valid() bool {
	return t.Category() != ""
}

// Category returns the palette category of t, or "" for unknown types
func (t FieldType) Category() Category {
	switch t {
	case TypeText, TypeTextarea, TypeRichText, TypeEmail, TypePassword, TypeUID, TypeEnumeration:
		return CategoryText
	case TypeNumber, TypeDecimal:
		return CategoryNumber
	case TypeDate, TypeDateTime, TypeTime:
		return CategoryDate
	case TypeBoolean:
		return CategoryBoolean
	case TypeMedia:
		return CategoryMedia
	case TypeRelation:
		return CategoryRelation
	case TypeJSON, TypeComponent, TypeDynamicZone:
		return CategoryAdvanced
	}
	return ""
}

func (t FieldType) String() string {
	return string(t)
}
