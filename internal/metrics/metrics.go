package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "eco_stations",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eco_stations",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eco_stations",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	reviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "eco_stations",
			Subsystem: "reviews",
			Name:      "created_total",
			Help:      "Total number of reviews submitted.",
		},
	)

	reviewImages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eco_stations",
			Subsystem: "reviews",
			Name:      "images_stored_total",
			Help:      "Review images written to the upload store.",
		},
		[]string{"backend"},
	)

	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eco_stations",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Login and registration attempts by outcome.",
		},
		[]string{"action", "result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eco_stations",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Review events handed to the broker, by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reviewsCreated,
		reviewImages,
		authAttempts,
		eventsPublished,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies labelled by route
// pattern, so /station/1 and /station/2 share a series.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// ReviewCreated counts a stored review.
func ReviewCreated() { reviewsCreated.Inc() }

// ReviewImageStored counts an uploaded image by storage backend.
func ReviewImageStored(backend string) { reviewImages.WithLabelValues(backend).Inc() }

// AuthAttempt counts a login or registration attempt.  result is
// "success" or a short failure reason.
func AuthAttempt(action, result string) { authAttempts.WithLabelValues(action, result).Inc() }

// EventPublished counts a review event publish by outcome.
func EventPublished(ok bool) {
	if ok {
		eventsPublished.WithLabelValues("ok").Inc()
		return
	}
	eventsPublished.WithLabelValues("error").Inc()
}
