package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	dashboardCacheTotal  *prometheus.CounterVec
	messagesSentTotal    *prometheus.CounterVec
	gradesRecordedTotal  prometheus.Counter
	inboxClientsActive   prometheus.Gauge
	snapshotSamplesTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors exported by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyboard_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studyboard_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyboard_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		dashboardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyboard_dashboard_cache_total",
			Help: "Dashboard cache lookups partitioned by result.",
		}, []string{"result"})

		messagesSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyboard_messages_sent_total",
			Help: "Messages sent partitioned by sender type.",
		}, []string{"sender_type"})

		gradesRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyboard_grades_recorded_total",
			Help: "Scores recorded by teachers.",
		})

		inboxClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyboard_inbox_clients_active",
			Help: "Open websocket inbox connections.",
		})

		snapshotSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyboard_snapshot_samples_total",
			Help: "Performance samples written by the weekly snapshot job.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			dashboardCacheTotal,
			messagesSentTotal,
			gradesRecordedTotal,
			inboxClientsActive,
			snapshotSamplesTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// DashboardCache counts cache hits and misses.
func DashboardCache() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheTotal
}

// MessagesSent counts stored messages.
func MessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return messagesSentTotal
}

// GradesRecorded counts scores written by teachers.
func GradesRecorded() prometheus.Counter {
	RegisterMetrics()
	return gradesRecordedTotal
}

// InboxClients tracks live websocket inbox connections.
func InboxClients() prometheus.Gauge {
	RegisterMetrics()
	return inboxClientsActive
}

// SnapshotSamples counts samples written by the snapshot job.
func SnapshotSamples() prometheus.Counter {
	RegisterMetrics()
	return snapshotSamplesTotal
}
