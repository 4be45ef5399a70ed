package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shortener"

// Redirect outcomes.
const (
	RedirectFound    = "found"
	RedirectNotFound = "not_found"
	RedirectError    = "error"
)

// Metrics holds the service's Prometheus collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	urlsShortened      *prometheus.CounterVec
	codeCollisions     prometheus.Counter
	collisionExhausted prometheus.Counter
	redirects          *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors, including Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		urlsShortened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "urls_shortened_total",
			Help:      "Shorten requests that succeeded, by whether a new mapping was created.",
		}, []string{"result"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_collisions_total",
			Help:      "Generated candidate codes that were already taken.",
		}),
		collisionExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collision_retries_exhausted_total",
			Help:      "Shorten requests that ran out of collision retries.",
		}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_total",
			Help:      "Resolve requests by outcome.",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.urlsShortened,
		m.codeCollisions,
		m.collisionExhausted,
		m.redirects,
		m.requestDuration,
	)

	return m
}

// URLShortened counts a successful shorten call.
func (m *Metrics) URLShortened(created bool) {
	result := "existing"
	if created {
		result = "created"
	}

	m.urlsShortened.WithLabelValues(result).Inc()
}

// CodeCollision counts a taken candidate code.
func (m *Metrics) CodeCollision() {
	m.codeCollisions.Inc()
}

// CollisionRetriesExhausted counts a shorten call that used up all attempts.
func (m *Metrics) CollisionRetriesExhausted() {
	m.collisionExhausted.Inc()
}

// Redirect counts a resolve outcome.
func (m *Metrics) Redirect(result string) {
	m.redirects.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
// path should be the route template, not the raw path, to bound cardinality.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
