// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Labels are kept low-cardinality: HTTP paths use the chi route pattern, and
// store/limiter labels are fixed enumerations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts requests by method, route pattern and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration records request duration in seconds by method and route pattern.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// StoreOperations counts document reads and writes by kind, op and result.
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_operations_total",
			Help: "JSON document store operations.",
		},
		[]string{"kind", "op", "result"},
	)

	// RateLimited counts rejected requests per limiter policy.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_rejections_total",
			Help: "Requests rejected by a rate limiter.",
		},
		[]string{"policy"},
	)

	// VisitsTracked counts unique daily visits by traffic source.
	VisitsTracked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_unique_visits_total",
			Help: "Unique daily visits recorded by the analytics tracker.",
		},
		[]string{"source"},
	)

	// Notifications counts outbound notification attempts by result.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Outbound lead notifications.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, StoreOperations, RateLimited, VisitsTracked, Notifications)
}
