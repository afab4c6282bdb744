package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderCreated(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.RecordOrderCreated("orange", 51600, false)
	m.RecordOrderCreated("orange", 25800, false)
	m.RecordOrderCreated("wave", 20000, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreatedTotal.WithLabelValues("orange", "no")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreatedTotal.WithLabelValues("wave", "yes")))
	assert.Equal(t, 77400.0, testutil.ToFloat64(m.orderRevenueTotal.WithLabelValues("orange")))
}

func TestStatusAndStaleCounters(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.RecordStatusChange("paid", "shipped")
	m.RecordStaleOrders(3)
	m.RecordStaleOrders(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChangesTotal.WithLabelValues("paid", "shipped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.staleOrdersFoundTotal))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/health", "200", time.Millisecond)
		m.RecordOrderCreated("wave", 1, false)
		m.RecordProofUpload("accepted")
		m.RecordStatusChange("pending", "paid")
		m.RecordStaleOrders(1)
		m.RecordUpload("videos", 10)
		m.RecordCacheLookup("promotions", true)
		m.SetRealtimeClients(2)
	})
}
