package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Message routing metrics
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademesh_messages_total",
			Help: "Total number of messages routed to agents",
		},
		[]string{"agent", "kind"},
	)

	messageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademesh_message_duration_seconds",
			Help:    "Agent message processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"agent"},
	)

	agentFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademesh_agent_failures_total",
			Help: "Total number of agent processing failures",
		},
		[]string{"agent"},
	)

	// Workflow metrics
	workflowRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademesh_workflow_runs_total",
			Help: "Total number of trading workflow runs",
		},
		[]string{"status"},
	)

	workflowStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademesh_workflow_stage_duration_seconds",
			Help:    "Trading workflow stage duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Tool metrics
	toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademesh_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)

	toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademesh_tool_call_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// Liveness metrics
	agentUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trademesh_agent_up",
			Help: "Whether an agent answered its last heartbeat (1 up, 0 down)",
		},
		[]string{"agent"},
	)

	initOnce sync.Once
)

// InitMetrics registers the TradeMesh metrics with the default Prometheus
// registry. Safe to call multiple times.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			messagesTotal,
			messageDuration,
			agentFailuresTotal,
			workflowRunsTotal,
			workflowStageDuration,
			toolCallsTotal,
			toolCallDuration,
			agentUp,
		)
	})
}

// MetricsHandler returns an HTTP handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordMessage records a routed message and its processing duration.
func RecordMessage(agent, kind string, duration time.Duration) {
	messagesTotal.WithLabelValues(agent, kind).Inc()
	messageDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordAgentFailure records an agent processing failure.
func RecordAgentFailure(agent string) {
	agentFailuresTotal.WithLabelValues(agent).Inc()
}

// RecordWorkflowRun records a completed workflow run by outcome.
func RecordWorkflowRun(status string) {
	workflowRunsTotal.WithLabelValues(status).Inc()
}

// RecordWorkflowStage records the duration of a single workflow stage.
func RecordWorkflowStage(stage string, duration time.Duration) {
	workflowStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordToolCall records a tool call by outcome.
func RecordToolCall(tool, status string, duration time.Duration) {
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// SetAgentUp sets the heartbeat liveness gauge for an agent.
func SetAgentUp(agent string, up bool) {
	if up {
		agentUp.WithLabelValues(agent).Set(1)
	} else {
		agentUp.WithLabelValues(agent).Set(0)
	}
}
