package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ragchef"

// Stage names observed by PipelineMetrics.StageDuration
const (
	StageValidate = "validate"
	StageRetrieve = "retrieve"
	StageWeb      = "web_search"
	StageGenerate = "generate"
	StageIngest   = "ingest"
)

// PipelineMetrics handles Prometheus metrics for the recipe pipeline and
// its HTTP surface. All collectors live on a dedicated registry.
type PipelineMetrics struct {
	registry *prometheus.Registry

	queriesTotal    *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	fallbacksTotal  *prometheus.CounterVec
	chunksRetrieved prometheus.Histogram
	ingestedChunks  prometheus.Counter
	rejectedTotal   prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewPipelineMetrics creates the collectors on a fresh registry
func NewPipelineMetrics() *PipelineMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &PipelineMetrics{
		registry: registry,

		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of recipe queries by outcome",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"stage"}),
		fallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of fallbacks taken by kind",
		}, []string{"kind"}),
		chunksRetrieved: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_retrieved",
			Help:      "Number of context chunks retrieved per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 20},
		}),
		ingestedChunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_chunks_total",
			Help:      "Total number of chunks stored in the vector store",
		}),
		rejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_ingredients_total",
			Help:      "Total number of ingredients rejected by validation",
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status_code"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for tests and custom exporters
func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// QueryCompleted counts a finished query
func (m *PipelineMetrics) QueryCompleted(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(outcome).Inc()
	m.chunksRetrieved.Observe(float64(chunks))
}

// StageDuration observes the time spent in a stage
func (m *PipelineMetrics) StageDuration(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Fallback counts a fallback path, e.g. "keyword_retrieval" or "recipe_decode"
func (m *PipelineMetrics) Fallback(kind string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(kind).Inc()
}

// ChunksIngested counts chunks stored by an ingestion run
func (m *PipelineMetrics) ChunksIngested(n int) {
	if m == nil {
		return
	}
	m.ingestedChunks.Add(float64(n))
}

// IngredientsRejected counts rejected ingredients
func (m *PipelineMetrics) IngredientsRejected(n int) {
	if m == nil {
		return
	}
	m.rejectedTotal.Add(float64(n))
}

// HTTPMiddleware records request counts and latency per route pattern
func (m *PipelineMetrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		m.httpRequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path, code).Observe(time.Since(start).Seconds())
	})
}
