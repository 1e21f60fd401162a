package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and worker flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	fanoutDeliveriesCreated  prometheus.Counter
	deliveriesDeliveredTotal prometheus.Counter
	deliveriesFailedTotal    *prometheus.CounterVec
	deliveryAttemptDuration  prometheus.Histogram
	sweepProcessedTotal      prometheus.Counter
	acknowledgedTotal        prometheus.Counter
	attemptInflight          prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "relay",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		fanoutDeliveriesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "fanout_deliveries_created_total",
				Help:      "Total number of delivery records created at fan-out time.",
			},
		),
		deliveriesDeliveredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "deliveries_delivered_total",
				Help:      "Total number of deliveries that reached the delivered state.",
			},
		),
		deliveriesFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "deliveries_failed_total",
				Help:      "Total number of delivery attempts that failed, by outcome.",
			},
			[]string{"reason"},
		),
		deliveryAttemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "relay",
				Name:      "delivery_attempt_duration_seconds",
				Help:      "Outbound notifier send duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		sweepProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "sweep_messages_processed_total",
				Help:      "Total number of due messages processed by scheduler sweeps.",
			},
		),
		acknowledgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "relay",
				Name:      "deliveries_acknowledged_total",
				Help:      "Total number of deliveries acknowledged as read.",
			},
		),
		attemptInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "relay",
				Name:      "attempt_rounds_inflight",
				Help:      "Current number of in-flight attempt rounds.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.fanoutDeliveriesCreated,
		m.deliveriesDeliveredTotal,
		m.deliveriesFailedTotal,
		m.deliveryAttemptDuration,
		m.sweepProcessedTotal,
		m.acknowledgedTotal,
		m.attemptInflight,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) AddFanoutCreated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.fanoutDeliveriesCreated.Add(float64(count))
}

func (m *Metrics) IncDelivered() {
	if m == nil {
		return
	}
	m.deliveriesDeliveredTotal.Inc()
}

func (m *Metrics) IncDeliveryFailed(reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.deliveriesFailedTotal.WithLabelValues(reasonLabel).Inc()
}

func (m *Metrics) ObserveAttemptDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.deliveryAttemptDuration.Observe(seconds)
}

func (m *Metrics) AddSweepProcessed(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sweepProcessedTotal.Add(float64(count))
}

func (m *Metrics) IncAcknowledged() {
	if m == nil {
		return
	}
	m.acknowledgedTotal.Inc()
}

func (m *Metrics) IncAttemptInflight() {
	if m == nil {
		return
	}
	m.attemptInflight.Inc()
}

func (m *Metrics) DecAttemptInflight() {
	if m == nil {
		return
	}
	m.attemptInflight.Dec()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
