// Package metrics holds the Prometheus collectors of the service and the
// recording helpers used by the unit of work, the outbox relay, the route
// calculators and the HTTP adapter.
//
// Every Record method is safe to call on a nil *Metrics, which records nothing.
// Tests and tools construct components without metrics that way.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all service metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CommitsTotal     *prometheus.CounterVec
	CommitDuration   prometheus.Histogram
	EventsDispatched *prometheus.CounterVec

	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	OutboxPending   prometheus.Gauge

	RoutingRequests *prometheus.CounterVec
	RoutingDuration *prometheus.HistogramVec

	RoutesCompleted prometheus.Counter
}

// New creates the collectors under namespace and registers them, with the Go
// and process collectors, on a private registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	m.CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uow_commits_total",
			Help:      "Unit of work commits by result (ok, conflict, cascade, error)",
		},
		[]string{"result"},
	)
	m.CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "uow_commit_duration_seconds",
			Help:      "Duration of unit of work commits including event dispatch",
			Buckets:   prometheus.DefBuckets,
		},
	)
	m.EventsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_dispatched_total",
			Help:      "Domain events dispatched to in-process handlers",
		},
		[]string{"event"},
	)

	m.OutboxPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox messages relayed to the broker",
		},
	)
	m.OutboxFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_relay_failures_total",
			Help:      "Failed outbox relay runs",
		},
	)
	m.OutboxPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_pending",
			Help:      "Unpublished messages seen by the last relay run",
		},
	)

	m.RoutingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_requests_total",
			Help:      "Route calculations by provider and status",
		},
		[]string{"provider", "status"},
	)
	m.RoutingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_duration_seconds",
			Help:      "Route calculation duration in seconds",
			Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	m.RoutesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_completed_total",
			Help:      "Routes moved to Completed",
		},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CommitsTotal,
		m.CommitDuration,
		m.EventsDispatched,
		m.OutboxPublished,
		m.OutboxFailures,
		m.OutboxPending,
		m.RoutingRequests,
		m.RoutingDuration,
		m.RoutesCompleted,
	)

	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a served HTTP request. path is the route template.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommit records the outcome of a unit of work commit.
func (m *Metrics) RecordCommit(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(result).Inc()
	m.CommitDuration.Observe(duration.Seconds())
}

// RecordEventDispatched counts one dispatched domain event.
func (m *Metrics) RecordEventDispatched(eventName string) {
	if m == nil {
		return
	}
	m.EventsDispatched.WithLabelValues(eventName).Inc()
}

// RecordOutboxRelay records a relay run that saw pending messages and published
// published of them.
func (m *Metrics) RecordOutboxRelay(pending, published int, failed bool) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(pending))
	m.OutboxPublished.Add(float64(published))
	if failed {
		m.OutboxFailures.Inc()
	}
}

// RecordRouting records one route calculation.
func (m *Metrics) RecordRouting(provider string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.RoutingRequests.WithLabelValues(provider, status).Inc()
	m.RoutingDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordRouteCompleted counts a route reaching Completed.
func (m *Metrics) RecordRouteCompleted() {
	if m == nil {
		return
	}
	m.RoutesCompleted.Inc()
}
