// Package openapi projects collection definitions onto an OpenAPI 3.0
// contract.
//
// Generate is a pure function over a set of CollectionConfig records: each
// collection contributes /api/{slug} (list, create), /api/{slug}/{id} (get,
// update, delete) and one component schema named after its label with all
// whitespace removed. Field types map to JSON Schema through a fixed table;
// unknown or textual types become plain strings.
//
// Service reads the registry on every request and memoises only the rendered
// bytes, keyed by a fingerprint of the collection set. The cache has an
// in-process LRU tier and an optional Redis tier.
//
// # Routes
//
//	GET /openapi.json
//	GET /openapi.yaml
//	GET /swagger-ui   (alias /api-docs)
package openapi
