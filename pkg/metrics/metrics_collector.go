package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
// 所有方法对 nil 接收者安全，单元测试可以直接传 nil
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 业务指标
	ordersCreatedTotal    *prometheus.CounterVec
	orderRevenueTotal     *prometheus.CounterVec
	proofsUploadedTotal   *prometheus.CounterVec
	statusChangesTotal    *prometheus.CounterVec
	staleOrdersFoundTotal prometheus.Counter
	uploadBytes           *prometheus.HistogramVec

	// 缓存指标
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	// 实时推送
	realtimeClients prometheus.Gauge
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		ordersCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_orders_created_total",
				Help: "Orders created by payment method",
			},
			[]string{"payment_method", "promo"},
		),

		orderRevenueTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_order_amount_fcfa_total",
				Help: "Sum of order totals in FCFA at creation time",
			},
			[]string{"payment_method"},
		),

		proofsUploadedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_payment_proofs_total",
				Help: "Payment proof uploads by result",
			},
			[]string{"result"},
		),

		statusChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_order_status_changes_total",
				Help: "Order status transitions",
			},
			[]string{"from", "to"},
		),

		staleOrdersFoundTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shop_stale_orders_found_total",
				Help: "Pending orders found past the reconciliation timeout",
			},
		),

		uploadBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_upload_size_bytes",
				Help:    "Size of accepted uploads",
				Buckets: []float64{64 << 10, 256 << 10, 1 << 20, 5 << 20, 20 << 20, 50 << 20},
			},
			[]string{"bucket"},
		),

		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_prefix"},
		),

		cacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_prefix"},
		),

		realtimeClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shop_realtime_clients",
				Help: "Connected change-notification websocket clients",
			},
		),
	}
}

var (
	globalCollector *MetricsCollector
	globalOnce      sync.Once
)

// GetGlobalCollector 获取注册在默认 Registerer 上的全局收集器
func GetGlobalCollector() *MetricsCollector {
	globalOnce.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOrderCreated 记录新订单
func (m *MetricsCollector) RecordOrderCreated(paymentMethod string, total int64, promo bool) {
	if m == nil {
		return
	}
	promoLabel := "no"
	if promo {
		promoLabel = "yes"
	}
	m.ordersCreatedTotal.WithLabelValues(paymentMethod, promoLabel).Inc()
	m.orderRevenueTotal.WithLabelValues(paymentMethod).Add(float64(total))
}

// RecordProofUpload 记录支付凭证上传结果: accepted / rejected / failed
func (m *MetricsCollector) RecordProofUpload(result string) {
	if m == nil {
		return
	}
	m.proofsUploadedTotal.WithLabelValues(result).Inc()
}

// RecordStatusChange 记录订单状态流转
func (m *MetricsCollector) RecordStatusChange(from, to string) {
	if m == nil {
		return
	}
	m.statusChangesTotal.WithLabelValues(from, to).Inc()
}

// RecordStaleOrders 记录巡检发现的滞留订单数
func (m *MetricsCollector) RecordStaleOrders(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.staleOrdersFoundTotal.Add(float64(n))
}

// RecordUpload 记录上传大小
func (m *MetricsCollector) RecordUpload(bucket string, size int64) {
	if m == nil {
		return
	}
	m.uploadBytes.WithLabelValues(bucket).Observe(float64(size))
}

// RecordCacheLookup 记录缓存命中情况
func (m *MetricsCollector) RecordCacheLookup(keyPrefix string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHitsTotal.WithLabelValues(keyPrefix).Inc()
	} else {
		m.cacheMissesTotal.WithLabelValues(keyPrefix).Inc()
	}
}

// SetRealtimeClients 更新在线 websocket 客户端数
func (m *MetricsCollector) SetRealtimeClients(n int) {
	if m == nil {
		return
	}
	m.realtimeClients.Set(float64(n))
}
