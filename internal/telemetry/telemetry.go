// Package telemetry exposes Prometheus metrics for the analytics service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	resolverDuration *prometheus.HistogramVec
	requestDuration  *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
}

// New creates the metric collectors on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_resolutions_total",
			Help: "Resolver outcomes by metric family and source path.",
		}, []string{"resolver", "source"}),
		resolverDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_resolver_duration_seconds",
			Help:    "Time spent resolving each metric family.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resolver"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
}

// ObserveResolution records one resolver outcome.
func (m *Metrics) ObserveResolution(resolver, source string) {
	m.resolutions.WithLabelValues(resolver, source).Inc()
}

// ObserveResolverDuration records the time one resolver took.
func (m *Metrics) ObserveResolverDuration(resolver string, seconds float64) {
	m.resolverDuration.WithLabelValues(resolver).Observe(seconds)
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
}

// Handler returns the scrape endpoint handler for the service registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
