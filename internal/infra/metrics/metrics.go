// Package metrics exposes Prometheus collectors for HTTP traffic, AI gateway calls and
// normalizer outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/expense-tracker/backend/internal/application/usecase/assistant"
	domainerror "github.com/expense-tracker/backend/internal/domain/error"
)

const namespace = "expense_tracker"

// Metrics holds every collector of the service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	gatewayCalls      *prometheus.CounterVec
	gatewayDuration   *prometheus.HistogramVec
	normalizerResults *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_gateway_calls_total",
			Help:      "Generative model calls by operation and result.",
		}, []string{"operation", "result"}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_gateway_call_duration_seconds",
			Help:      "Generative model call latency by operation.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"operation"}),
		normalizerResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_normalizer_outcomes_total",
			Help:      "Normalized AI results by operation, source and fallback reason.",
		}, []string{"operation", "source", "reason"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGatewayCall records one gateway call. An empty kind means success.
func (m *Metrics) ObserveGatewayCall(operation string, kind domainerror.AIFailureKind, elapsed time.Duration) {
	result := "success"
	if kind != "" {
		result = string(kind)
	}
	m.gatewayCalls.WithLabelValues(operation, result).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveOutcome records the outcome of one normalizer operation.
func (m *Metrics) ObserveOutcome(operation string, source assistant.Source, reason assistant.FallbackReason) {
	label := string(reason)
	if label == "" {
		label = "none"
	}
	m.normalizerResults.WithLabelValues(operation, string(source), label).Inc()
}

// Middleware records request counts and latencies by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
