package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	alerts   *prometheus.CounterVec
	sales    prometheus.Counter
	chat     *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New registers the service metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartpharma_alerts_generated_total",
			Help: "Alerts produced by alert listings, by type and severity.",
		}, []string{"type", "severity"}),
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartpharma_sales_recorded_total",
			Help: "Sales successfully recorded.",
		}),
		chat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartpharma_chat_queries_total",
			Help: "Chat queries answered, by matched intent.",
		}, []string{"intent"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartpharma_skipped_items_total",
			Help: "Products skipped inside batch computations, by stage.",
		}, []string{"stage"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartpharma_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.alerts, m.sales, m.chat, m.skipped, m.requests)
	return m
}

func (m *Metrics) AlertGenerated(alertType, severity string) {
	if m == nil || m.alerts == nil {
		return
	}
	m.alerts.WithLabelValues(normalizeLabel(alertType), normalizeLabel(severity)).Inc()
}

func (m *Metrics) SaleRecorded() {
	if m == nil || m.sales == nil {
		return
	}
	m.sales.Inc()
}

func (m *Metrics) ChatQuery(intent string) {
	if m == nil || m.chat == nil {
		return
	}
	m.chat.WithLabelValues(normalizeLabel(intent)).Inc()
}

func (m *Metrics) Skipped(stage string, n int) {
	if m == nil || m.skipped == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(stage)).Add(float64(n))
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
