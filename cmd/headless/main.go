package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/api"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/audit"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/config"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/deletion"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/middleware"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/openapi"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage/bolt"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage/postgres"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server failed")
	}
}

type backends struct {
	registry  storage.SchemaRegistry
	documents storage.DocumentStore
	assets    storage.AssetStore
	redis     *postgres.RedisClient
	db        *sql.DB
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()
	healthChecker := observability.NewHealthChecker(version)
	var cleanups []observability.ShutdownFunc

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Environment:    cfg.Observability.OTelEnvironment,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	b, closers, err := openBackends(ctx, cfg.Storage, healthChecker, logger)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, closers...)

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	orchestrator, err := deletion.NewOrchestrator(deletion.Config{
		Verifier:         verifier,
		Registry:         b.registry,
		Documents:        b.documents,
		Assets:           b.assets,
		AssetConcurrency: cfg.Deletion.AssetConcurrency,
		Logger:           logger,
		Metrics:          metrics,
		Tracer:           otel.Tracer("headless/deletion"),
	})
	if err != nil {
		return err
	}

	var docCache *openapi.DocumentCache
	if cfg.Storage.CacheEnabled {
		cacheCfg := openapi.CacheConfig{
			Size:    cfg.Storage.L1CacheSize,
			TTL:     cfg.Storage.CacheTTL,
			Metrics: metrics,
			Logger:  logger,
		}
		if b.redis != nil {
			cacheCfg.Remote = b.redis
		}
		docCache = openapi.NewDocumentCache(cacheCfg)
	}
	docs := openapi.NewService(b.registry, docCache, openapi.Info{
		Version:     cfg.OpenAPI.Version,
		Description: cfg.OpenAPI.Description,
		ServerURL:   cfg.OpenAPI.ServerURL,
	}, metrics, logger)

	limiter, err := newLimiter(ctx, cfg.RateLimit, b.redis)
	if err != nil {
		return err
	}

	auditLog, err := newAuditLogger(ctx, cfg.Audit, b.db)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func(context.Context) error { return auditLog.Close() })

	server, err := api.NewServer(api.Config{
		Registry:     b.registry,
		Deleter:      orchestrator,
		Verifier:     verifier,
		OpenAPI:      docs,
		Audit:        auditLog,
		RateLimiter:  limiter,
		FailOpen:     cfg.RateLimit.FailOpen,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Metrics:      metrics,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      otelhttp.NewHandler(server, "headless-api"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthRouter := mux.NewRouter()
	observability.RegisterHealthRoutes(healthRouter, healthChecker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthRouter, registry)
	}
	healthServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:           healthRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc("health server", healthServer.Shutdown)
	for i, fn := range cleanups {
		shutdown.RegisterShutdownFunc(fmt.Sprintf("cleanup-%d", i), fn)
	}

	errCh := make(chan error, 2)
	for _, srv := range []*http.Server{httpServer, healthServer} {
		go func(srv *http.Server) {
			defer observability.RecoverPanic(logger, "http listener")
			logger.WithField("addr", srv.Addr).Info("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	done := make(chan error, 1)
	go func() { done <- shutdown.WaitForShutdown() }()

	select {
	case err := <-errCh:
		shutdown.Shutdown(context.Background())
		return err
	case err := <-done:
		return err
	}
}

func openBackends(ctx context.Context, cfg storage.Config, health *observability.HealthChecker, logger logrus.FieldLogger) (*backends, []observability.ShutdownFunc, error) {
	b := &backends{}
	var closers []observability.ShutdownFunc

	switch cfg.Type {
	case "postgres":
		db, err := postgres.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		registry := postgres.NewRegistry(db)
		b.db = db
		b.registry = registry
		b.documents = postgres.NewDocumentStore(db, cfg.DocumentBatchLimit)
		health.Register("postgres", registry.HealthCheck, true)
		closers = append(closers, closeDB(db))
		logger.Info("using postgres storage")

	default:
		registry, err := storage.NewFileSystemRegistry(cfg.FilesystemRoot)
		if err != nil {
			return nil, nil, err
		}
		docs, err := bolt.Open(cfg.BoltPath, cfg.DocumentBatchLimit)
		if err != nil {
			return nil, nil, err
		}
		b.registry = registry
		b.documents = docs
		health.Register("schemas", registry.HealthCheck, true)
		health.Register("documents", docs.HealthCheck, true)
		closers = append(closers, func(context.Context) error { return docs.Close() })
		logger.WithFields(logrus.Fields{
			"schemas":   cfg.FilesystemRoot,
			"documents": cfg.BoltPath,
		}).Info("using filesystem storage")
	}

	if cfg.AssetsEnabled() {
		assets, err := postgres.NewS3AssetStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		b.assets = assets
		health.Register("assets", assets.HealthCheck, false)
	} else {
		logger.Warn("no asset store configured; media references will be reported, not deleted")
	}

	if cfg.RedisURL != "" {
		client, err := postgres.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		b.redis = client
		health.Register("redis", client.HealthCheck, false)
		closers = append(closers, func(context.Context) error { return client.Close() })
	}

	return b, closers, nil
}

func closeDB(db *sql.DB) observability.ShutdownFunc {
	return func(context.Context) error { return db.Close() }
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (auth.TokenVerifier, error) {
	if cfg.Mode == config.AuthModeOIDC {
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	}
	return auth.NewStaticTokenVerifier(cfg.StaticTokens)
}

func newLimiter(ctx context.Context, cfg config.RateLimitConfig, redisClient *postgres.RedisClient) (middleware.Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	limitCfg := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RequestsPerMinute,
		WindowDuration:    time.Minute,
		BurstSize:         cfg.Burst,
	}
	if cfg.Distributed {
		if redisClient == nil {
			return nil, errors.New("distributed rate limiting requires HEADLESS_REDIS_URL")
		}
		return middleware.NewDistributedRateLimiter(redisClient.GetClient(), limitCfg, "headless:ratelimit"), nil
	}
	limiter := middleware.NewRateLimiter(limitCfg)
	limiter.StartCleanup(ctx)
	return limiter, nil
}

func newAuditLogger(ctx context.Context, cfg config.AuditConfig, db *sql.DB) (audit.Logger, error) {
	var sinks []audit.Logger
	if cfg.Dir != "" {
		fileLog, err := audit.NewFileLogger(audit.FileLoggerConfig{
			BasePath: cfg.Dir,
			MaxSize:  cfg.MaxSize,
			MaxFiles: cfg.MaxFiles,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fileLog)
	}
	if cfg.Postgres {
		dbLog, err := audit.NewDBLogger(ctx, db)
		if err != nil {
			audit.NewMultiLogger(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, dbLog)
	}

	switch len(sinks) {
	case 0:
		return audit.NoOpLogger{}, nil
	case 1:
		return sinks[0], nil
	default:
		return audit.NewMultiLogger(sinks...), nil
	}
}
