// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "creatorhub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "creatorhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	bulkMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorhub",
			Subsystem: "lists",
			Name:      "bulk_messages_total",
			Help:      "Direct messages attempted by list fan-out, by outcome.",
		},
		[]string{"outcome"},
	)

	bulkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "creatorhub",
			Subsystem: "lists",
			Name:      "bulk_send_duration_seconds",
			Help:      "Duration of a whole list fan-out.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	reconciledLists = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creatorhub",
			Subsystem: "lists",
			Name:      "reconciled_total",
			Help:      "Member counts recomputed by the reconciler, by list type.",
		},
		[]string{"list_type"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bulkMessages,
		bulkDuration,
		reconciledLists,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// HTTPStarted marks a request as in flight and returns the completion hook.
func HTTPStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordBulkSend records the outcome of one list fan-out.
func RecordBulkSend(sent, failed int, took time.Duration) {
	bulkMessages.WithLabelValues("sent").Add(float64(sent))
	bulkMessages.WithLabelValues("failed").Add(float64(failed))
	bulkDuration.Observe(took.Seconds())
}

// RecordReconciled counts lists whose cached member count was recomputed.
func RecordReconciled(listType string, n int) {
	reconciledLists.WithLabelValues(listType).Add(float64(n))
}
