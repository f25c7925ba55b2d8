package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the service. Each collector
// owns its registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	StoreRetries    *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec

	// Business metrics
	CampaignTransitions *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
	AssetsUploaded      prometheus.Counter
}

// NewCollector creates a collector with metrics under namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"operation", "index", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StoreRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_retries_total",
				Help:      "Total number of retried store operations",
			},
			[]string{"operation"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
		CampaignTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "campaign_transitions_total",
				Help:      "Total number of campaign status transitions",
			},
			[]string{"from", "to"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of published events",
			},
			[]string{"detail_type", "status"},
		),
		AssetsUploaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assets_uploaded_total",
				Help:      "Total number of uploaded brand assets",
			},
		),
	}

	c.registry.MustRegister(
		c.StoreOperations,
		c.StoreDuration,
		c.StoreRetries,
		c.BreakerState,
		c.CampaignTransitions,
		c.EventsPublished,
		c.AssetsUploaded,
	)
	return c
}

// RecordStoreOperation records one store call.
func (c *Collector) RecordStoreOperation(operation, index string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.StoreOperations.WithLabelValues(operation, index, status).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRetry counts a retried store call.
func (c *Collector) RecordRetry(operation string) {
	c.StoreRetries.WithLabelValues(operation).Inc()
}

// RecordBreakerState publishes the breaker state. gobreaker numbers its
// states closed=0, half-open=1, open=2.
func (c *Collector) RecordBreakerState(name string, state int) {
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordTransition counts an accepted campaign status change.
func (c *Collector) RecordTransition(from, to string) {
	c.CampaignTransitions.WithLabelValues(from, to).Inc()
}

// RecordPublish counts a publish attempt on the event bus.
func (c *Collector) RecordPublish(detailType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.EventsPublished.WithLabelValues(detailType, status).Inc()
}

// RecordAssetUpload counts a stored brand asset.
func (c *Collector) RecordAssetUpload() {
	c.AssetsUploaded.Inc()
}

// GetRegistry returns the Prometheus registry for this collector.
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
