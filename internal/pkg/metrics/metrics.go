package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farepass",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farepass",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farepass",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Calendar metrics
	calendarFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farepass",
		Subsystem: "calendar",
		Name:      "fetches_total",
		Help:      "Total holiday provider fetch attempts",
	}, []string{"provider", "status"})

	calendarFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farepass",
		Subsystem: "calendar",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of holiday provider fetches",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider"})

	// CacheStoreOps counts calendar cache file loads and saves.
	CacheStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farepass",
		Subsystem: "calendar",
		Name:      "cache_store_ops_total",
		Help:      "Total calendar cache file operations",
	}, []string{"operation"})

	// ComparisonsTotal counts pass comparisons by outcome.
	ComparisonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farepass",
		Subsystem: "pass",
		Name:      "comparisons_total",
		Help:      "Total pass-versus-regular comparisons computed",
	}, []string{"recommendation"})

	// RefreshEventsTotal counts calendar refresh events seen on the broker.
	RefreshEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "farepass",
		Subsystem: "calendar",
		Name:      "refresh_events_total",
		Help:      "Total calendar refresh events received",
	})
)

// ObserveCalendarFetch records one provider fetch attempt.
func ObserveCalendarFetch(provider string, ok bool, d time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	calendarFetchesTotal.WithLabelValues(provider, status).Inc()
	calendarFetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
