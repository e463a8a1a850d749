package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "callwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callwire",
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Outbound Call envelopes by op code, transport mode and outcome.",
		},
		[]string{"op", "mode", "outcome"},
	)
	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "callwire",
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Outbound Call round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op", "mode", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, calls, callDuration)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCall tracks one client round trip. outcome is "ok" or a failure kind.
func RecordCall(op int32, mode, outcome string, duration time.Duration) {
	RegisterMetrics()
	opLabel := strconv.FormatInt(int64(op), 10)
	calls.WithLabelValues(opLabel, mode, outcome).Inc()
	callDuration.WithLabelValues(opLabel, mode, outcome).Observe(duration.Seconds())
}
