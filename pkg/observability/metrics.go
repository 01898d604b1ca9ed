package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Cascading deletion metrics
	DeletionsTotal        *prometheus.CounterVec
	DeletionStageDuration *prometheus.HistogramVec
	DeletedDocumentsTotal prometheus.Counter
	DeletedAssetsTotal    prometheus.Counter
	DeletionWarningsTotal prometheus.Counter
	DocumentBatchesTotal  prometheus.Counter

	// OpenAPI document metrics
	OpenAPIGenerationsTotal   prometheus.Counter
	OpenAPIGenerationDuration prometheus.Histogram

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Storage metrics
	StorageErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headless_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "headless_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		DeletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headless_collection_deletions_total",
				Help: "Cascading collection deletions by outcome",
			},
			[]string{"outcome"},
		),
		DeletionStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "headless_collection_deletion_stage_duration_seconds",
				Help:    "Duration of each cascading deletion stage",
				Buckets: []float64{.005, .025, .1, .5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
		DeletedDocumentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headless_deleted_documents_total",
			Help: "Documents removed by cascading deletions",
		}),
		DeletedAssetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headless_deleted_assets_total",
			Help: "Media assets the asset host confirmed deleted",
		}),
		DeletionWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headless_deletion_warnings_total",
			Help: "Non-fatal asset deletion failures",
		}),
		DocumentBatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headless_document_batches_total",
			Help: "Atomic document delete batches committed",
		}),

		OpenAPIGenerationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "headless_openapi_generations_total",
			Help: "OpenAPI documents generated from collection schemas",
		}),
		OpenAPIGenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "headless_openapi_generation_duration_seconds",
			Help:    "OpenAPI document generation duration",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		}),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headless_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache", "tier"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headless_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),

		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "headless_storage_errors_total",
				Help: "Total number of storage errors",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DeletionsTotal,
		m.DeletionStageDuration,
		m.DeletedDocumentsTotal,
		m.DeletedAssetsTotal,
		m.DeletionWarningsTotal,
		m.DocumentBatchesTotal,
		m.OpenAPIGenerationsTotal,
		m.OpenAPIGenerationDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.StorageErrorsTotal,
	)

	return m
}

// The recorder methods below accept a nil receiver so components can run
// without metrics.

// ObserveStage records how long a deletion stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.DeletionStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveDeletion records the outcome and counts of one cascading deletion
func (m *Metrics) ObserveDeletion(outcome string, documents, batches, assets, warnings int) {
	if m == nil {
		return
	}
	m.DeletionsTotal.WithLabelValues(outcome).Inc()
	m.DeletedDocumentsTotal.Add(float64(documents))
	m.DocumentBatchesTotal.Add(float64(batches))
	m.DeletedAssetsTotal.Add(float64(assets))
	m.DeletionWarningsTotal.Add(float64(warnings))
}

// ObserveGeneration records one OpenAPI generation
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.OpenAPIGenerationsTotal.Inc()
	m.OpenAPIGenerationDuration.Observe(d.Seconds())
}

// CacheHit records a hit in the given tier ("l1" or "l2")
func (m *Metrics) CacheHit(cache, tier string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache, tier).Inc()
}

// CacheMiss records a miss in every tier
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// StorageError counts a failed storage operation
func (m *Metrics) StorageError(operation string) {
	if m == nil {
		return
	}
	m.StorageErrorsTotal.WithLabelValues(operation).Inc()
}

// statusWriter captures the response status code
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled by mux route template to keep cardinality bounded.
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(router *mux.Router, registry *prometheus.Registry) {
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
