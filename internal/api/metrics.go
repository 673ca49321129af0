package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "publications_http_requests_total",
		Help: "The total number of processed HTTP requests",
	}, []string{"method", "route", "status_code"})

	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "publications_http_request_latency",
			Help:    "Histogram of HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	liveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "publications_live_comment_subscribers",
		Help: "The number of open live comment subscriptions",
	})
)
