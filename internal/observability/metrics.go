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
			Namespace: "station64",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "station64",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "station64",
			Subsystem: "board",
			Name:      "sessions_active",
			Help:      "Currently connected sessions per transport.",
		},
		[]string{"transport"},
	)
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "station64",
			Subsystem: "board",
			Name:      "sessions_total",
			Help:      "Sessions accepted since process start.",
		},
		[]string{"transport"},
	)
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "station64",
			Subsystem: "board",
			Name:      "commands_total",
			Help:      "Dispatched command lines by menu and outcome.",
		},
		[]string{"menu", "outcome"},
	)
	handlerFaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "station64",
			Subsystem: "board",
			Name:      "handler_faults_total",
			Help:      "Command handlers that panicked or returned an error.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			sessionsActive, sessionsTotal, commandsTotal, handlerFaults,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// SessionOpened bumps the per-transport connection gauges; adapters
// call it once per accepted connection.
func SessionOpened(transport string) {
	RegisterMetrics()
	sessionsTotal.WithLabelValues(transport).Inc()
	sessionsActive.WithLabelValues(transport).Inc()
}

// SessionClosed is the adapter-side release counterpart.
func SessionClosed(transport string) {
	RegisterMetrics()
	sessionsActive.WithLabelValues(transport).Dec()
}

// RecordCommand counts one dispatched line. Outcome is one of
// "ok", "unknown", or "fault".
func RecordCommand(menu, outcome string) {
	RegisterMetrics()
	commandsTotal.WithLabelValues(menu, outcome).Inc()
	if outcome == "fault" {
		handlerFaults.Inc()
	}
}
