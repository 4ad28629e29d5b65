package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ActivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activations_total",
			Help: "Total number of successful user activations",
		},
	)

	SalesAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_amount_total",
			Help: "Sum of all commission ledger amounts",
		},
	)

	BetsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bets_resolved_total",
			Help: "Total number of resolved bets",
		},
	)
)
