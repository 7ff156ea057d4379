package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_requests_total",
				Help: "Total number of shipping options requests by outcome",
			},
			[]string{"outcome"},
		),
		RequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipping_request_duration_seconds",
				Help:    "Shipping options request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_cache_lookups_total",
				Help: "Cache lookups by namespace and result",
			},
			[]string{"namespace", "result"},
		),
		HandlerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipping_handler_duration_seconds",
				Help:    "Fulfillment handler duration in seconds by type and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"fulfillment_type", "status"},
		),
	}
}

// RecordRequest records a finished shipping options request.
func (m *Metrics) RecordRequest(outcome string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup. It implements cache.Observer.
func (m *Metrics) RecordCacheLookup(namespace, result string) {
	m.CacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordHandler records a fulfillment handler invocation.
func (m *Metrics) RecordHandler(fulfillmentType string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.HandlerDuration.WithLabelValues(fulfillmentType, status).Observe(duration.Seconds())
}
