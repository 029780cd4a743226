// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soc_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soc_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	DatastoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soc_datastore_queries_total",
			Help: "Total number of datastore queries issued",
		},
		[]string{"operation", "outcome"},
	)

	DatastoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soc_datastore_query_duration_seconds",
			Help:    "Duration of datastore queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ReportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soc_report_errors_total",
			Help: "Total number of failed report requests",
		},
		[]string{"report", "category"},
	)

	ReportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soc_report_cache_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)
)
