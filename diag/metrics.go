package diag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filequery"

// Metrics holds the query engine's prometheus collectors.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	EventsTotal   *prometheus.CounterVec
	ReadFailures  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
}

// NewMetrics registers the collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		QueriesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of executed queries by execution path.",
		}, []string{"path"}),
		EventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostic_events_total",
			Help:      "Total number of diagnostic events by kind.",
		}, []string{"kind"}),
		ReadFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_failures_total",
			Help:      "Total number of failed source reads by attempt.",
		}, []string{"attempt"}),
		QueryDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent reading, loading and executing a query.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Emit counts the event by kind
func (m *Metrics) Emit(e Event) {
	m.EventsTotal.WithLabelValues(string(e.Kind)).Inc()
}
