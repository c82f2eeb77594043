package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path", "status"},
	)
	assetCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cleanup_failures_total",
			Help: "Total number of uploaded image files that could not be removed.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(assetCleanupFailures)
}

// ObserveRequest records one handled HTTP request
func ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	httpRequestsTotal.With(labels).Inc()
	httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// AssetCleanupFailed records a failed best-effort image removal
func AssetCleanupFailed() {
	assetCleanupFailures.Inc()
}

// Handler exposes the prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
