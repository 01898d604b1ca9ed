package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/audit"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/deletion"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/httputil"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/middleware"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/openapi"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

// CollectionDeleter runs the cascading deletion of a collection.
// *deletion.Orchestrator is the production implementation.
type CollectionDeleter interface {
	DeleteCollection(ctx context.Context, req deletion.Request) (*deletion.Result, error)
}

// Config wires a Server
type Config struct {
	Registry storage.SchemaRegistry
	Deleter  CollectionDeleter
	Verifier auth.TokenVerifier
	OpenAPI  *openapi.Service

	// Audit receives schema mutation events; nil disables auditing
	Audit audit.Logger

	// RateLimiter guards the /api/collections routes; nil disables limiting
	RateLimiter middleware.Limiter
	FailOpen    bool

	CORSOrigins  []string
	MaxBodyBytes int64
	Metrics      *observability.Metrics
	Logger       logrus.FieldLogger
}

// Server represents our API server
type Server struct {
	registry  storage.SchemaRegistry
	deleter   CollectionDeleter
	validator *schema.Validator
	router    *mux.Router
	handler   http.Handler
	authn     *middleware.AuthMiddleware
	limiter   *middleware.RateLimitMiddleware
	docs      *openapi.Handlers
	audit     audit.Logger
	metrics   *observability.Metrics
	logger    logrus.FieldLogger
}

// NewServer creates a new API server
func NewServer(cfg Config) (*Server, error) {
	switch {
	case cfg.Registry == nil:
		return nil, errors.New("api: registry is required")
	case cfg.Deleter == nil:
		return nil, errors.New("api: deleter is required")
	case cfg.Verifier == nil:
		return nil, errors.New("api: verifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NoOpLogger{}
	}

	s := &Server{
		registry:  cfg.Registry,
		deleter:   cfg.Deleter,
		validator: schema.NewValidator(),
		router:    mux.NewRouter(),
		authn:     middleware.NewAuthMiddleware(cfg.Verifier, false, cfg.Logger),
		audit:     cfg.Audit,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if cfg.RateLimiter != nil {
		s.limiter = middleware.NewRateLimitMiddleware(cfg.RateLimiter, cfg.FailOpen, cfg.Logger)
	}
	if cfg.OpenAPI != nil {
		s.docs = openapi.NewHandlers(cfg.OpenAPI)
	}

	s.setupRoutes()

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		s.withLogger,
		httputil.RecoveryMiddleware(cfg.Logger),
		httputil.LoggingMiddleware(cfg.Logger),
		httputil.CORSMiddleware(cfg.CORSOrigins),
	}
	if cfg.MaxBodyBytes > 0 {
		chain = append(chain, httputil.MaxBytesMiddleware(cfg.MaxBodyBytes))
	}
	s.handler = httputil.Chain(chain...)(s.router)
	return s, nil
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}

	// Schema administration. DELETE authenticates inside the orchestrator so
	// that an anonymous request never touches the registry.
	s.router.Handle("/api/collections", s.protected(s.listCollections)).Methods("GET")
	s.router.Handle("/api/collections", s.protected(s.createCollection)).Methods("POST")
	s.router.Handle("/api/collections/{slug}", s.protected(s.getCollection)).Methods("GET")
	s.router.Handle("/api/collections/{slug}", s.limited(http.HandlerFunc(s.deleteCollection))).Methods("DELETE")

	s.router.HandleFunc("/api/field-types", s.listFieldTypes).Methods("GET")

	if s.docs != nil {
		s.docs.RegisterRoutes(s.router)
	}
}

// protected requires a verified identity, then applies the rate limit so
// buckets are keyed by subject
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.authn.Handler(s.limited(h))
}

func (s *Server) limited(h http.Handler) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Handler(h)
}

// withLogger makes the server logger the base of observability.FromContext
func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(observability.WithLogger(r.Context(), s.logger)))
	})
}

// Router exposes the route table, e.g. for otelhttp route tagging
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
