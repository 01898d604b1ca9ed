// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding and decoding, request parsing and the middleware
// shared by every route.
//
// Every error reply has the body {"error": "<message>"}:
//
//	httputil.WriteNotFoundError(w, "collection not found")
//	httputil.WriteUnauthorized(w, "invalid or expired token")
//
// Middleware compose with Chain:
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//	)(router)
package httputil
