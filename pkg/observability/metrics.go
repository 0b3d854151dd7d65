// Package observability registers the service's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "caronaexpress"

var (
	AcceptancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "acceptances_total", Help: "Ride acceptance requests by outcome"},
		[]string{"outcome"},
	)
	AcceptanceAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "acceptance_attempts",
		Help:      "Commit attempts needed per acceptance request",
		Buckets:   []float64{1, 2, 3, 4, 5, 8},
	})

	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "transfers_total", Help: "Balance transfers by kind and outcome"},
		[]string{"kind", "outcome"},
	)

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Time to evaluate one ride search",
		Buckets:   prometheus.DefBuckets,
	})
	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "live_subscribers", Help: "Open live discovery subscriptions"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
