// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatRequestsTotal tracks chat exchanges by property and outcome.
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total chat exchanges",
		},
		[]string{"property_id", "status"},
	)

	// LLMRequestDuration tracks model round-trip duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion round-trip duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// FunctionCallsTotal tracks executor invocations by function and outcome.
	FunctionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "function_calls_total",
			Help: "Total function calls dispatched by the orchestration loop",
		},
		[]string{"function", "status"},
	)

	// AttachmentsProcessed tracks processed attachments by kind.
	AttachmentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attachments_processed_total",
			Help: "Total attachments processed",
		},
		[]string{"kind", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for one model round trip.
func RecordLLMRequest(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMRequestDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordFunctionCall records one executor dispatch.
func RecordFunctionCall(function, status string) {
	FunctionCallsTotal.WithLabelValues(function, status).Inc()
}
