package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exported on the metrics port:
//   - placenote_http_requests_total{method,route,status}
//   - placenote_http_request_duration_seconds{method,route}
//   - placenote_engagement_toggles_total{kind,state}
//   - placenote_geocode_failures_total
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placenote_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placenote_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	EngagementToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placenote_engagement_toggles_total",
			Help: "Like and visit toggles by resulting state",
		},
		[]string{"kind", "state"}, // state: "on" or "off"
	)

	GeocodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placenote_geocode_failures_total",
			Help: "Address lookups that returned no coordinates",
		},
	)
)

// Middleware records request counts and latency per registered route
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// ToggleState maps a membership flag to the state label
func ToggleState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}
