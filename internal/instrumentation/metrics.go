package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrTool      = "tool"
	attrStage     = "stage"
	attrEvent     = "event"
	attrCourse    = "course"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Request queue metrics
	queueDepth        metric.Int64UpDownCounter
	queueWaitDuration metric.Float64Histogram
	tokensConsumed    metric.Int64Counter

	// Model API metrics
	modelRequestsTotal   metric.Int64Counter
	modelRequestDuration metric.Float64Histogram
	chunksPerSubmission  metric.Int64Histogram

	// Pipeline metrics
	pipelineStageDuration metric.Float64Histogram
	pipelineJobsTotal     metric.Int64Counter

	// Webhook metrics
	webhookEventsTotal metric.Int64Counter

	// Backend operation metrics
	backendOperationsTotal   metric.Int64Counter
	backendOperationDuration metric.Float64Histogram

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// Request queue metrics
	m.queueDepth, err = meter.Int64UpDownCounter(
		"request_queue_depth",
		metric.WithDescription("Number of requests waiting in the rate-limited queue"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request_queue_depth gauge: %w", err)
	}

	m.queueWaitDuration, err = meter.Float64Histogram(
		"request_queue_wait_seconds",
		metric.WithDescription("Time a request spent queued before its API call started"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 5.0, 15.0, 30.0, 60.0, 120.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request_queue_wait_seconds histogram: %w", err)
	}

	m.tokensConsumed, err = meter.Int64Counter(
		"token_budget_consumed_total",
		metric.WithDescription("Estimated tokens consumed from the rate-limit budget"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_budget_consumed_total counter: %w", err)
	}

	// Model API metrics
	m.modelRequestsTotal, err = meter.Int64Counter(
		"model_requests_total",
		metric.WithDescription("Total number of model API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create model_requests_total counter: %w", err)
	}

	m.modelRequestDuration, err = meter.Float64Histogram(
		"model_request_duration_seconds",
		metric.WithDescription("Model API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create model_request_duration_seconds histogram: %w", err)
	}

	m.chunksPerSubmission, err = meter.Int64Histogram(
		"submission_chunks",
		metric.WithDescription("Number of chunks an oversized submission was split into"),
		metric.WithUnit("{chunk}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 21),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission_chunks histogram: %w", err)
	}

	// Pipeline metrics
	m.pipelineStageDuration, err = meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 5.0, 15.0, 60.0, 300.0, 900.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_stage_duration_seconds histogram: %w", err)
	}

	m.pipelineJobsTotal, err = meter.Int64Counter(
		"pipeline_jobs_total",
		metric.WithDescription("Total number of pipeline jobs by outcome"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline_jobs_total counter: %w", err)
	}

	// Webhook metrics
	m.webhookEventsTotal, err = meter.Int64Counter(
		"webhook_events_total",
		metric.WithDescription("Total number of webhook events received"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook_events_total counter: %w", err)
	}

	// Backend Operation Metrics
	m.backendOperationsTotal, err = meter.Int64Counter(
		"backend_operations_total",
		metric.WithDescription("Total number of backend operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_operations_total counter: %w", err)
	}

	m.backendOperationDuration, err = meter.Float64Histogram(
		"backend_operation_duration_seconds",
		metric.WithDescription("Backend operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend_operation_duration_seconds histogram: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// QueueDepthChanged adjusts the queued-request gauge. The queue calls it
// with +1 on enqueue and -1 when a request leaves the queue.
func (m *Metrics) QueueDepthChanged(ctx context.Context, delta int) {
	if m.queueDepth == nil {
		return // Instrumentation not initialized
	}

	m.queueDepth.Add(ctx, int64(delta))
}

// ObserveQueueWait records how long a request sat in the queue before its
// API call started.
func (m *Metrics) ObserveQueueWait(ctx context.Context, d time.Duration) {
	if m.queueWaitDuration == nil {
		return // Instrumentation not initialized
	}

	m.queueWaitDuration.Record(ctx, d.Seconds())
}

// TokensConsumed records estimated tokens drawn from the rate-limit budget.
func (m *Metrics) TokensConsumed(ctx context.Context, tokens int) {
	if m.tokensConsumed == nil {
		return // Instrumentation not initialized
	}

	m.tokensConsumed.Add(ctx, int64(tokens))
}

// RecordModelRequest records one model API request with its outcome.
// Status should be one of: "success", "rate_limited", "error".
func (m *Metrics) RecordModelRequest(ctx context.Context, status string, duration time.Duration) {
	if m.modelRequestsTotal == nil || m.modelRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.modelRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.modelRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSubmissionChunks records how many chunks a submission was split
// into. Single-call submissions record 1.
func (m *Metrics) RecordSubmissionChunks(ctx context.Context, chunks int) {
	if m.chunksPerSubmission == nil {
		return // Instrumentation not initialized
	}

	m.chunksPerSubmission.Record(ctx, int64(chunks))
}

// ObserveStageDuration records the duration of one pipeline stage
// (fetch_recording, download_transcript, parse_transcript, analysis,
// archive, report).
func (m *Metrics) ObserveStageDuration(ctx context.Context, stage string, d time.Duration) {
	if m.pipelineStageDuration == nil {
		return // Instrumentation not initialized
	}

	m.pipelineStageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String(attrStage, stage)))
}

// RecordJob records a finished pipeline job.
// Status should be one of: "succeeded", "failed".
func (m *Metrics) RecordJob(ctx context.Context, status string) {
	if m.pipelineJobsTotal == nil {
		return // Instrumentation not initialized
	}

	m.pipelineJobsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordWebhookEvent records a received webhook event with its outcome.
// Status should be one of: "accepted", "rejected", "invalid_signature".
func (m *Metrics) RecordWebhookEvent(ctx context.Context, event, status string) {
	if m.webhookEventsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrEvent, event),
		attribute.String(attrStatus, status),
	}

	m.webhookEventsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBackendOperation records a backend operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Backend service name (zoom, drive, sheets, model)
//   - operation: Operation type (list, get, create, update, upload, etc.)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordBackendOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.backendOperationsTotal == nil || m.backendOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.backendOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.backendOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "zoom_list_recordings", "recording_process")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocationWithCourse records an MCP tool invocation with the
// course it operated on. The course label is high-cardinality and only
// included when detailedLabels is enabled.
func (m *Metrics) RecordToolInvocationWithCourse(ctx context.Context, toolName, status, course string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && course != "" {
		attrs = append(attrs, attribute.String(attrCourse, course))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
