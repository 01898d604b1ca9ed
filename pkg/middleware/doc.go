// Package middleware provides HTTP middleware for authentication and rate
// limiting of administrative endpoints.
//
// AuthMiddleware verifies "Authorization: Bearer <token>" against an
// auth.TokenVerifier and stores the *auth.Identity on the request context:
//
//	authMW := middleware.NewAuthMiddleware(verifier, false, logger)
//	router.Handle("/api/collections", authMW.Handler(h)).Methods("POST")
//
// RateLimitMiddleware throttles callers by verified subject, or by client IP
// for anonymous requests. Two Limiter implementations exist:
//
//	middleware.NewRateLimiter(cfg)                          // in-process token bucket
//	middleware.NewDistributedRateLimiter(redisClient, cfg, "") // shared fixed window
package middleware
