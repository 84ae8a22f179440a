package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithService("zoom").
		WithOperation("process").
		WithMeeting("abc123uuid==").
		WithCourse("Physics 101").
		WithJob("job-1").
		Build()

	require.Len(t, attrs, 5)

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	assert.Equal(t, "zoom", attrMap[SpanAttrService])
	assert.Equal(t, "process", attrMap[SpanAttrOperation])
	assert.Equal(t, "abc123uuid==", attrMap[SpanAttrMeeting])
	assert.Equal(t, "Physics 101", attrMap[SpanAttrCourse])
	assert.Equal(t, "job-1", attrMap[SpanAttrJob])
}

func TestSpanAttributeBuilderEmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithService("drive").
		WithMeeting("").
		WithCourse("").
		WithJob("").
		Build()

	// Empty optional values are skipped.
	assert.Len(t, attrs, 1)
}

func TestStartSpan(t *testing.T) {
	newTestProvider(t, false)

	ctx, span := StartSpan(context.Background(), "job.process_recording")
	defer span.End()

	require.NotNil(t, ctx)
	require.NotNil(t, span)
}

func TestStartToolSpan(t *testing.T) {
	newTestProvider(t, false)

	ctx, span := StartToolSpan(context.Background(), "zoom_list_recordings")
	defer span.End()

	require.NotNil(t, ctx)
	require.NotNil(t, span)
}

func TestStartBackendSpan(t *testing.T) {
	newTestProvider(t, false)

	ctx, span := StartBackendSpan(context.Background(), "drive", "upload")
	defer span.End()

	require.NotNil(t, ctx)
	require.NotNil(t, span)
}

func TestStartStageSpan(t *testing.T) {
	newTestProvider(t, false)

	ctx, span := StartStageSpan(context.Background(), "analysis")
	defer span.End()

	require.NotNil(t, ctx)
	require.NotNil(t, span)
}

func TestSetSpanStatus(t *testing.T) {
	newTestProvider(t, false)

	_, span := StartSpan(context.Background(), "test-span")
	defer span.End()

	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil) // nil error is a no-op
	SetSpanSuccess(span)
}

func TestGetTraceIDNoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
