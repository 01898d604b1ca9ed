// Package schema defines collection definitions and the closed catalog of
// field types that drive the content API.
//
// A CollectionConfig is keyed by its slug. The slug names both the registry
// record and the document collection holding its entries, and it never
// changes after creation. Field types form a closed set: every switch over
// FieldType in this module enumerates all of them, and AllFieldTypes is the
// authoritative list used by tests to catch a dispatch site that was not
// updated.
package schema
