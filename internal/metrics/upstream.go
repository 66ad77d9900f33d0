package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream document-API Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftmcp",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream document API requests",
		},
		[]string{"document", "operation", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "craftmcp",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream document API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"document", "operation"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftmcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	ResponsesTruncatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "craftmcp",
			Name:      "responses_truncated_total",
			Help:      "Tool responses rewritten to fit the size budget",
		},
		[]string{"tool"},
	)

	SSESessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "craftmcp",
			Name:      "sse_sessions_open",
			Help:      "Currently open SSE client sessions",
		},
	)
)

// RegisterToolMetrics registers tool and upstream metrics explicitly (no init()).
func RegisterToolMetrics() {
	prometheus.MustRegister(
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		ToolCallsTotal,
		ResponsesTruncatedTotal,
		SSESessionsOpen,
	)
}
