package metrics

import (
	"net/http"
	"time"

	"param-server/src/helpers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service's Prometheus instruments. A nil *Collector is
// valid and records nothing. Nothing in request handling reads these back.
type Collector struct {
	registry          *prometheus.Registry
	requests          *prometheus.CounterVec
	fetchSeconds      *prometheus.HistogramVec
	activeConnections prometheus.Gauge
}

// -----------------------------------------------------------------------------

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paramserver",
			Name:      "requests_total",
			Help:      "Parameter requests by outcome category.",
		}, []string{"front", "outcome"}),
		fetchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paramserver",
			Name:      "fetch_seconds",
			Help:      "Historical data fetch latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider", "outcome"}),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "paramserver",
			Name:      "active_connections",
			Help:      "Wire connections currently being handled.",
		}),
	}
	c.registry.MustRegister(c.requests, c.fetchSeconds, c.activeConnections)
	return c
}

// -----------------------------------------------------------------------------

// ObserveRequest counts one finished exchange on front ("tcp", "http", "grpc").
func (c *Collector) ObserveRequest(front string, err error) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(front, helpers.Category(err)).Inc()
}

// -----------------------------------------------------------------------------

func (c *Collector) ObserveFetch(provider string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.fetchSeconds.WithLabelValues(provider, helpers.Category(err)).Observe(elapsed.Seconds())
}

// -----------------------------------------------------------------------------

func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.activeConnections.Inc()
}

// -----------------------------------------------------------------------------

func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.activeConnections.Dec()
}

// -----------------------------------------------------------------------------

// Registry exposes the underlying registry (tests gather from it).
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// -----------------------------------------------------------------------------

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
