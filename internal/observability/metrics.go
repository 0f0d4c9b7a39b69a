package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec

	activityRecordsTotal   *prometheus.CounterVec
	activityRecordFailures prometheus.Counter
	suspiciousFlagsTotal   *prometheus.CounterVec
	activityExportSeconds  prometheus.Histogram
	activityStatsRequests  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		activityRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_records_total",
			Help: "Activity log entries persisted, labelled by action kind.",
		}, []string{"action"})

		activityRecordFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_record_failures_total",
			Help: "Activity log writes that failed and were swallowed.",
		})

		suspiciousFlagsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_suspicious_flags_total",
			Help: "Derived suspicious activity events, labelled by flag type.",
		}, []string{"type"})

		activityExportSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activity_export_seconds",
			Help:    "Latency distribution for activity log CSV exports.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		})

		activityStatsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_stats_requests_total",
			Help: "Activity stats requests, labelled by cache outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			activityRecordsTotal, activityRecordFailures, suspiciousFlagsTotal,
			activityExportSeconds, activityStatsRequests,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ActivityRecords exposes the counter for persisted activity entries.
func ActivityRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return activityRecordsTotal
}

// ActivityRecordFailures exposes the counter for swallowed record failures.
func ActivityRecordFailures() prometheus.Counter {
	RegisterMetrics()
	return activityRecordFailures
}

// SuspiciousFlags exposes the counter for derived suspicious events.
func SuspiciousFlags() *prometheus.CounterVec {
	RegisterMetrics()
	return suspiciousFlagsTotal
}

// ActivityExportLatency exposes the histogram for CSV export latency.
func ActivityExportLatency() prometheus.Histogram {
	RegisterMetrics()
	return activityExportSeconds
}

// ActivityStatsRequests exposes the counter for stats cache outcomes.
func ActivityStatsRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return activityStatsRequests
}
