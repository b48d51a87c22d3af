// Package metrics exposes Prometheus collectors for HTTP traffic and ledger activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yield_wallet",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yield_wallet",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "yield_wallet",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yield_wallet",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	walletMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "yield_wallet",
			Subsystem: "ledger",
			Name:      "wallet_movement_amount_total",
			Help:      "Absolute amount moved in or out of wallets, by entry type.",
		},
		[]string{"type"},
	)

	reconcileMismatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yield_wallet",
			Subsystem: "reconcile",
			Name:      "mismatched_users",
			Help:      "Users whose wallet differs from their history in the last reconciliation run.",
		},
	)

	reconcileLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "yield_wallet",
			Subsystem: "reconcile",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed reconciliation run.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerOperations,
		walletMovements,
		reconcileMismatches,
		reconcileLastRun,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath() // Route template keeps label cardinality bounded
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordOperation counts a ledger operation outcome.
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordMovement adds the absolute value of a wallet movement.
func RecordMovement(entryType string, amount float64) {
	if amount < 0 {
		amount = -amount
	}
	walletMovements.WithLabelValues(entryType).Add(amount)
}

// RecordReconcile publishes the result of a reconciliation run.
func RecordReconcile(mismatches int, at time.Time) {
	reconcileMismatches.Set(float64(mismatches))
	reconcileLastRun.Set(float64(at.Unix()))
}
