package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics for the application. A nil
// receiver degrades every method to a no-op so wiring stays optional.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entriesCreated  *prometheus.CounterVec
	entriesPosted   prometheus.Counter
	refRetries      prometheus.Counter
}

// NewMetrics initialises the registry with HTTP and ledger metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_journal_entries_created_total",
		Help: "Journal entries created, by resulting status.",
	}, []string{"status"})
	posted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_journal_entries_posted_total",
		Help: "Draft journal entries transitioned to posted.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_journal_reference_retries_total",
		Help: "Reference number collisions retried during entry creation.",
	})
	registry.MustRegister(requests, duration, entries, posted, retries)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		entriesCreated:  entries,
		entriesPosted:   posted,
		refRetries:      retries,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request counts and latency per chi route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// EntryCreated counts a journal entry landing in the given status.
func (m *Metrics) EntryCreated(status string) {
	if m == nil {
		return
	}
	m.entriesCreated.WithLabelValues(status).Inc()
}

// EntryPosted counts a draft transitioning to posted.
func (m *Metrics) EntryPosted() {
	if m == nil {
		return
	}
	m.entriesPosted.Inc()
}

// ReferenceRetried counts a reference sequence collision retry.
func (m *Metrics) ReferenceRetried() {
	if m == nil {
		return
	}
	m.refRetries.Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
