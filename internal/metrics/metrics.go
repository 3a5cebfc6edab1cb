// Package metrics exposes Prometheus instrumentation for the HTTP API
// and the reservation flow.  Collectors are registered with promauto on
// the default registry and served through the /metrics endpoint.
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
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reservationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_requests_total",
			Help: "Reservation creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_generated_total",
			Help: "Total PDF tickets generated",
		},
	)
)

// TrackReservation records one reservation creation attempt.  Outcome
// is one of "created", "conflict", "rejected" or "error".
func TrackReservation(outcome string) {
	reservationOutcomes.WithLabelValues(outcome).Inc()
}

// TrackTicket records one generated PDF ticket.
func TrackTicket() {
	ticketsGenerated.Inc()
}

// Middleware instruments every request with a counter and a latency
// histogram, labeled by the route pattern rather than the raw path so
// /movies/1 and /movies/2 share a series.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
