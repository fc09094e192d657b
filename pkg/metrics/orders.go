package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records the checkout commit pipeline and HTTP surface.
type OrderMetrics struct {
	commitDuration *prometheus.HistogramVec
	commits        *prometheus.CounterVec
	requests       *prometheus.CounterVec
}

// NewOrderMetrics registers the storefront metrics on the provided
// registerer. A nil registerer yields a no-op instance for tests.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	commitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_commit_duration_seconds",
		Help:    "Duration of order commit transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_commits_total",
		Help: "Order commit attempts by outcome.",
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status class.",
	}, []string{"route", "status"})
	reg.MustRegister(commitDuration, commits, requests)
	return &OrderMetrics{
		commitDuration: commitDuration,
		commits:        commits,
		requests:       requests,
	}
}

// ObserveOrderCommit records one commit attempt.
func (m *OrderMetrics) ObserveOrderCommit(outcome string, duration time.Duration) {
	if m == nil || m.commits == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.commitDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.commits.WithLabelValues(outcome).Inc()
}

// IncRequest counts one handled HTTP request.
func (m *OrderMetrics) IncRequest(route, status string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(route), normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
