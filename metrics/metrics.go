package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staygrow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staygrow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// ListingsTotal counts listing requests by mode (browse or search).
	ListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staygrow_listings_total",
			Help: "Total number of showcase listing requests",
		},
		[]string{"mode"},
	)
	// EngagementTotal counts like/bookmark toggles by kind and resulting state.
	EngagementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staygrow_engagement_toggles_total",
			Help: "Total number of like and bookmark toggles",
		},
		[]string{"kind", "state"},
	)
	// ViewsRecorded counts project views that were stored.
	ViewsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staygrow_views_recorded_total",
			Help: "Total number of recorded project views",
		},
	)
)
