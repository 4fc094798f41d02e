package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the service.
type Metrics struct {
	registry    *prometheus.Registry
	scrape      http.Handler
	httpTotal   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
	authEvents  *prometheus.CounterVec
	kdfDuration prometheus.Histogram
	jobsTotal   *prometheus.CounterVec
}

// NewMetrics initialises the registry and the service metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	httpTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_auth_http_requests_total",
		Help: "Served HTTP requests by method, matched route and status code.",
	}, []string{"method", "route", "code"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_auth_http_request_duration_seconds",
		Help:    "HTTP handling latency by method and matched route.",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})
	authEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_auth_events_total",
		Help: "Authentication events by operation and outcome.",
	}, []string{"event", "outcome"})
	kdf := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "odyssey_auth_kdf_duration_seconds",
		Help:    "Time spent deriving password keys.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_jobs_total",
		Help: "Background jobs processed by task type and outcome.",
	}, []string{"task", "outcome"})
	registry.MustRegister(httpTotal, httpLatency, authEvents, kdf, jobs)
	return &Metrics{
		registry:    registry,
		scrape:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		httpTotal:   httpTotal,
		httpLatency: httpLatency,
		authEvents:  authEvents,
		kdfDuration: kdf,
		jobsTotal:   jobs,
	}
}

// Handler serves the registry in the Prometheus exposition format. A nil
// Metrics answers 503.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.scrape
}

// Middleware counts and times every request under its chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := matchedRoute(r)
		m.httpTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// AuthEvent counts one register, login or logout outcome.
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

// ObserveKDF records the duration of one key derivation.
func (m *Metrics) ObserveKDF(d time.Duration) {
	if m == nil {
		return
	}
	m.kdfDuration.Observe(d.Seconds())
}

// JobProcessed counts a background task run.
func (m *Metrics) JobProcessed(task string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.jobsTotal.WithLabelValues(task, outcome).Inc()
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// matchedRoute keeps label cardinality bounded; unmatched paths share one label.
func matchedRoute(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}
