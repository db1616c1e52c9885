package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	agentRunTotal    *prometheus.CounterVec
	agentRunDuration *prometheus.HistogramVec
	agentIterations  *prometheus.HistogramVec

	toolExecutionTotal    *prometheus.CounterVec
	toolExecutionDuration *prometheus.HistogramVec

	orchestrationTotal    *prometheus.CounterVec
	orchestrationDuration prometheus.Histogram
	subtaskResults        *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			agentRunTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agent_run_total",
					Help: "Total agent loop runs by provider and status.",
				},
				[]string{"provider", "status"},
			),
			agentRunDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agent_run_duration_seconds",
					Help:    "Agent loop run duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			agentIterations: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agent_run_iterations",
					Help:    "Model turns consumed per agent run by provider.",
					Buckets: []float64{1, 2, 3, 5, 8, 10, 15, 20},
				},
				[]string{"provider"},
			),
			toolExecutionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_execution_total",
					Help: "Total tool executions by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolExecutionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_execution_duration_seconds",
					Help:    "Tool execution duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
			orchestrationTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "orchestration_total",
					Help: "Total orchestrations by outcome.",
				},
				[]string{"outcome"},
			),
			orchestrationDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "orchestration_duration_seconds",
					Help:    "End-to-end orchestration duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			subtaskResults: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "orchestration_subtask_results_total",
					Help: "Per-agent subtask results by status.",
				},
				[]string{"status"},
			),
		}

		prometheus.MustRegister(
			m.agentRunTotal,
			m.agentRunDuration,
			m.agentIterations,
			m.toolExecutionTotal,
			m.toolExecutionDuration,
			m.orchestrationTotal,
			m.orchestrationDuration,
			m.subtaskResults,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

// Handler exposes the default registry over HTTP.
func Handler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

// RecordAgentRun records one completed agent loop run.
func RecordAgentRun(provider string, duration time.Duration, iterations int, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.agentRunTotal.WithLabelValues(provider, status).Inc()
	m.agentRunDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.agentIterations.WithLabelValues(provider).Observe(float64(iterations))
}

// RecordToolExecution records one tool execution.
func RecordToolExecution(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.toolExecutionTotal.WithLabelValues(tool, status).Inc()
	m.toolExecutionDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordOrchestration records one completed orchestration.
func RecordOrchestration(outcome string, duration time.Duration) {
	m := getMetrics()
	m.orchestrationTotal.WithLabelValues(outcome).Inc()
	m.orchestrationDuration.Observe(duration.Seconds())
}

// RecordSubtaskResult records one per-agent subtask outcome.
func RecordSubtaskResult(status string) {
	getMetrics().subtaskResults.WithLabelValues(status).Inc()
}
