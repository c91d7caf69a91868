// Package metrics provides Prometheus instrumentation for the property
// server and dispatch layers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "observe").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// defaultConfig returns the default metrics configuration.
func defaultConfig() Config {
	return Config{
		Namespace: "observe",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics for a property server.
// All methods are safe on a nil receiver, so instrumentation points can
// record unconditionally.
//
// Metrics collected:
//   - observe_requests_total: Counter of HTTP requests by path and status
//   - observe_request_duration_seconds: Histogram of request duration
//   - observe_changes_total: Counter of property changes by property name
//   - observe_watchers: Gauge of live change-signal watchers
//   - observe_ws_clients: Gauge of connected WebSocket clients
//   - observe_dispatch_queue_depth: Gauge of queued dispatcher closures
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	changesTotal    *prometheus.CounterVec
	watchers        prometheus.Gauge
	wsClients       prometheus.Gauge
	queueDepth      prometheus.Gauge
}

// New creates and registers the collectors.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Collector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of HTTP requests handled",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		changesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changes_total",
			Help:        "Total number of property changes by property name",
			ConstLabels: config.ConstLabels,
		}, []string{"property"}),

		watchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watchers",
			Help:        "Number of live change-signal watchers",
			ConstLabels: config.ConstLabels,
		}),

		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ws_clients",
			Help:        "Number of connected WebSocket clients",
			ConstLabels: config.ConstLabels,
		}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_queue_depth",
			Help:        "Number of queued dispatcher closures not yet run",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRequest records one handled HTTP request.
func (c *Collector) ObserveRequest(path, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(path, status).Inc()
	c.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordChange records one property change.
func (c *Collector) RecordChange(property string) {
	if c == nil {
		return
	}
	c.changesTotal.WithLabelValues(property).Inc()
}

// AddWatchers adjusts the live watcher gauge by delta.
func (c *Collector) AddWatchers(delta int) {
	if c == nil {
		return
	}
	c.watchers.Add(float64(delta))
}

// AddWSClients adjusts the connected WebSocket client gauge by delta.
func (c *Collector) AddWSClients(delta int) {
	if c == nil {
		return
	}
	c.wsClients.Add(float64(delta))
}

// SetQueueDepth records the current dispatcher queue depth.
func (c *Collector) SetQueueDepth(depth int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(depth))
}
