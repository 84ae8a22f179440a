package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/recap/internal/instrumentation"
	"github.com/teemow/recap/internal/server"
)

func newTestContext(t *testing.T, opts ...server.ContextOption) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil, nil, opts...)
	t.Cleanup(func() {
		_ = sc.Shutdown()
	})
	return sc
}

func noopMetrics(t *testing.T) *instrumentation.Metrics {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return metrics
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	ctx := context.Background()

	// Server context without metrics: the wrapper passes straight through
	sc := newTestContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("job_status", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandler("job_status", sc, handler)

	_, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	// Error result, not a Go error
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("error message"), nil
	}

	wrapped := InstrumentedToolHandler("job_status", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}
}

func TestInstrumentedToolHandlerWithService_Success(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("zoom_list_recordings", "zoom", "list", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandlerWithService_WithMetrics(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, server.WithInstrumentation(noopMetrics(t), nil))

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		time.Sleep(1 * time.Millisecond)
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("zoom_list_recordings", "zoom", "list", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Error("expected result, got nil")
	}

	// Note: With noop meter, we can't verify actual metric values,
	// but we verify the code path executes without panics.
	// The metrics are recorded via:
	// - metrics.RecordToolInvocation(ctx, "zoom_list_recordings", "success", duration)
	// - metrics.RecordBackendOperation(ctx, "zoom", "list", "success", duration)
}

func TestInstrumentedToolHandlerWithService_ErrorWithMetrics(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t, server.WithInstrumentation(noopMetrics(t), nil))

	expectedErr := errors.New("recording not found")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandlerWithService("recording_process", "zoom", "process", sc, handler)

	_, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != expectedErr {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestGetMeetingFromArgs(t *testing.T) {
	if got := GetMeetingFromArgs(map[string]interface{}{"meeting_uuid": "abc123uuid=="}); got != "abc123uuid==" {
		t.Errorf("GetMeetingFromArgs = %q, want %q", got, "abc123uuid==")
	}
	if got := GetMeetingFromArgs(map[string]interface{}{}); got != "" {
		t.Errorf("GetMeetingFromArgs on empty args = %q, want empty", got)
	}
	if got := GetMeetingFromArgs(map[string]interface{}{"meeting_uuid": 42}); got != "" {
		t.Errorf("GetMeetingFromArgs on non-string = %q, want empty", got)
	}
}

func TestGetStringArg(t *testing.T) {
	args := map[string]interface{}{"course": "Physics 101", "empty": ""}
	if v, ok := GetStringArg(args, "course"); !ok || v != "Physics 101" {
		t.Errorf("GetStringArg(course) = %q, %v", v, ok)
	}
	if _, ok := GetStringArg(args, "empty"); ok {
		t.Error("GetStringArg reported empty string as present")
	}
	if _, ok := GetStringArg(args, "missing"); ok {
		t.Error("GetStringArg reported missing key as present")
	}
}
