package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Store related metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec
	StoreSize       *prometheus.GaugeVec

	// Request layer metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Notification metrics
	Notifications *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on reg. A nil
// registerer registers on the default prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of settled store operations",
		}, []string{"entity", "kind", "status"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations from dispatch to settlement",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"entity", "kind"}),
		StoreSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "collection_size",
			Help:      "Current number of records held in a store collection",
		}, []string{"entity"}),

		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the clinic API",
		}, []string{"method", "status"}),
		APILatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests sent to the clinic API",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "notifications_total",
			Help:      "Total number of cross-store refresh notifications",
		}, []string{"topic", "direction"}),
	}
}

// ObserveOperation records a settled store operation. A nil receiver is a no-op.
func (m *Metrics) ObserveOperation(entity, kind, status string, started time.Time) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(entity, kind, status).Inc()
	m.StoreLatency.WithLabelValues(entity, kind).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetCollectionSize(entity string, n int) {
	if m == nil {
		return
	}
	m.StoreSize.WithLabelValues(entity).Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, status string, started time.Time) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, status).Inc()
	m.APILatency.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

func (m *Metrics) CountNotification(topic, direction string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(topic, direction).Inc()
}
