package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK      = "ok"
	outcomeStatus  = "http_error"
	outcomeNetwork = "network_error"
)

// Registry holds the client's metrics. It is separate from the default
// registry so the TUI can expose exactly these series.
var Registry = prometheus.NewRegistry()

var (
	requestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reciloop",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reciloop",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func observeRequest(op, outcome string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
