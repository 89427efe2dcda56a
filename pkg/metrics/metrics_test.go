package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics("clinic", prometheus.NewRegistry())

	m.ObserveOperation("patient", "getAll", "succeeded", time.Now())
	m.ObserveOperation("patient", "getAll", "succeeded", time.Now())
	m.ObserveOperation("patient", "delete", "failed", time.Now())

	assert.Equal(t, float64(2), testutil.ToFloat64(m.StoreOperations.WithLabelValues("patient", "getAll", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StoreOperations.WithLabelValues("patient", "delete", "failed")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("room", "add", "failed", time.Now())
		m.SetCollectionSize("room", 4)
		m.ObserveRequest("GET", "200", time.Now())
		m.CountNotification("patients.refresh", "out")
	})
}
