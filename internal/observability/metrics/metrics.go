package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldline",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status class.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldline",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// AdvisoryMetrics records advisory endpoint outcomes: whether the AI
// response was used or the deterministic fallback substituted.
type AdvisoryMetrics struct {
	outcomes *prometheus.CounterVec
}

func NewAdvisoryMetrics() *AdvisoryMetrics {
	return &AdvisoryMetrics{
		outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldline",
			Subsystem: "advisor",
			Name:      "outcomes_total",
			Help:      "Advisory responses by endpoint and outcome (ai|fallback).",
		}, []string{"endpoint", "outcome"}),
	}
}

func (m *AdvisoryMetrics) Record(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(endpoint, outcome).Inc()
}

// GinMiddleware instruments every request handled by the engine.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := statusClass(c.Writer.Status())

		m.requests.WithLabelValues(route, method, status).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
