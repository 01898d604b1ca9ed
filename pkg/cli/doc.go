// Package cli provides the headless-cli command-line interface.
//
// # Overview
//
// headless-cli administers a running server over its HTTP API and can
// generate the OpenAPI document offline from schema files. Every remote
// command reads the server URL from -server (or HEADLESS_SERVER) and the
// bearer token from -token (or HEADLESS_TOKEN). The token is attached by an
// oauth2 static token source.
//
// # Commands
//
// delete: Cascading deletion of a collection
//
//	headless-cli delete -yes posts
//
// Warnings list assets the media host did not confirm as deleted.
//
// list: Show registered collections
//
//	headless-cli list
//
// push: Create collections from YAML files, one collection per document
//
//	headless-cli push -file schemas/posts.yaml
//	headless-cli push -dir schemas -dry-run
//
// openapi: Download the generated document, or build it offline
//
//	headless-cli openapi -format yaml -out openapi.yaml
//	headless-cli openapi -schemas ./schemas -api-version 2.0.0
//
// gen-token: Mint a static admin token and its HEADLESS_AUTH_STATIC_TOKENS entry
//
//	headless-cli gen-token -subject ops
//
// # Schema files
//
//	slug: posts
//	label: Post
//	fields:
//	  - name: title
//	    type: text
//	    required: true
//	  - name: cover
//	    type: media
//
// Files are validated locally with the server's rules before any request
// is made.
package cli
