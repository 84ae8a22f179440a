// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the recap server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, queue behavior, model calls, and backend API calls
//   - Distributed tracing for webhook handling, pipeline stages, and backend calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Queue Metrics:
//   - queue_depth: Gauge of requests waiting in the rate-limited queue
//   - queue_wait_duration_seconds: Histogram of time requests spend queued
//   - queue_tokens_consumed_total: Counter of estimated tokens drawn from the bucket
//
// Model Metrics:
//   - model_requests_total: Counter of model API calls by status
//   - model_request_duration_seconds: Histogram of model call durations
//   - model_chunks_per_submission: Histogram of chunk counts per submission
//
// Pipeline Metrics:
//   - pipeline_stage_duration_seconds: Histogram of per-stage durations
//   - pipeline_jobs_total: Counter of processed jobs by status
//
// Webhook Metrics:
//   - webhook_events_total: Counter of received webhook events by type and status
//
// Backend Operation Metrics:
//   - backend_operations_total: Counter of backend operations by service, operation, status
//   - backend_operation_duration_seconds: Histogram of backend operation durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Pipeline stages (pipeline.<stage>)
//   - Backend calls (backend.<service>.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: recap)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "recap",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/webhooks/recording-completed", 200, time.Since(start))
//
//	// Record a backend operation
//	recorder.RecordBackendOperation(ctx, "drive", "upload", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "recording_process", "success", time.Since(start))
package instrumentation
