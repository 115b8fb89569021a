// Package metrics exposes Prometheus counters for the HTTP API and the
// bulk import/export operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instrumentdb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Served HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "instrumentdb",
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "Wall time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "instrumentdb",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		},
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instrumentdb",
			Name:      "imports_total",
			Help:      "Bulk imports, by outcome.",
		},
		[]string{"outcome"},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instrumentdb",
			Name:      "exports_total",
			Help:      "Bulk exports, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Middleware observes every request. The path label is the route
// pattern, not the raw URL, to keep cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			requestsInFlight.Inc()
			err := next(c)
			requestsInFlight.Dec()

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				if httperr, ok := err.(*echo.HTTPError); ok {
					status = httperr.Code
				}
			}

			requestsTotal.WithLabelValues(
				method, path, strconv.Itoa(status),
			).Inc()
			requestSeconds.WithLabelValues(method, path).
				Observe(time.Since(begin).Seconds())
			return err
		}
	}
}

// Handler serves the scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
