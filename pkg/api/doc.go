// Package api provides the HTTP server of the headless content backend.
//
// # Overview
//
// The server exposes schema administration and the generated API contract.
// Routes are registered on a gorilla/mux router and wrapped with request
// IDs, panic recovery, access logging, CORS and an optional body size cap.
//
// # API Endpoints
//
//	DELETE /api/collections/{slug}   cascading deletion (bearer token)
//	GET    /api/collections          list schemas (authenticated)
//	POST   /api/collections          create a schema (authenticated)
//	GET    /api/collections/{slug}   fetch one schema (authenticated)
//	GET    /api/field-types          field type catalog
//	GET    /openapi.json             generated OpenAPI 3.0 document
//	GET    /openapi.yaml             same document as YAML
//	GET    /swagger-ui, /api-docs    interactive viewer
//
// The DELETE route does not run the authentication middleware. The raw
// bearer token is passed to the deletion orchestrator, which verifies it
// before reading the registry. Outcomes map to HTTP as follows:
//
//	200  {"status":"success","data":<deletion.Result>}
//	401  missing or rejected token
//	404  no schema with that slug
//	503  request canceled before any document was erased
//	500  anything else; the body carries only a request id
//
// Schema creation answers 400 for invalid configs and 409 when the slug is
// taken or the label derives a component name already in use.
//
// Creations and every deletion attempt are written to the configured
// audit.Logger. A failing audit sink is logged and does not affect the reply.
//
// # Usage
//
//	server, err := api.NewServer(api.Config{
//		Registry: registry,
//		Deleter:  orchestrator,
//		Verifier: verifier,
//		OpenAPI:  openapi.NewService(registry, cache, info, metrics, logger),
//		Logger:   logger,
//	})
//	http.ListenAndServe(":8080", server)
package api
