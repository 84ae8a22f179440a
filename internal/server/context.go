package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/instrumentation"
	"github.com/teemow/recap/internal/logging"
	"github.com/teemow/recap/internal/pipeline"
	"github.com/teemow/recap/internal/queue"
	"github.com/teemow/recap/internal/zoom"
)

// DefaultShutdownTimeout bounds graceful shutdown, including the queue
// drain.
const DefaultShutdownTimeout = 30 * time.Second

// Processor runs recording jobs. The pipeline Processor satisfies this;
// tests substitute fakes.
type Processor interface {
	ProcessRecording(ctx context.Context, meetingUUID string) (*pipeline.JobResult, error)
	ProcessTranscript(ctx context.Context, vttBytes []byte, meta pipeline.SessionMeta) (*pipeline.JobResult, error)
}

// Analyzer generates analysis documents without archiving anything. The
// analysis service satisfies this.
type Analyzer interface {
	Generate(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// RecordingLister lists cloud recordings. The Zoom client satisfies this.
type RecordingLister interface {
	ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]zoom.Recording, error)
}

// ContextOption configures a ServerContext.
type ContextOption func(*ServerContext)

// WithAnalyzer wires the direct-analysis surface (HTTP analyze endpoint
// and transcript_analyze tool).
func WithAnalyzer(analyzer Analyzer) ContextOption {
	return func(sc *ServerContext) {
		sc.analyzer = analyzer
	}
}

// WithRecordings wires recording listing for the MCP tools.
func WithRecordings(recordings RecordingLister) ContextOption {
	return func(sc *ServerContext) {
		sc.recordings = recordings
	}
}

// WithInstrumentation wires tool metrics and audit logging. Both may be
// nil; tool handlers fall back to plain execution.
func WithInstrumentation(metrics *instrumentation.Metrics, audit *instrumentation.AuditLogger) ContextOption {
	return func(sc *ServerContext) {
		sc.metrics = metrics
		sc.audit = audit
	}
}

// ServerContext holds the wired collaborators shared by the HTTP server
// and the MCP tools: the processor, the job tracker, and the request
// queue whose lifetime it owns.
type ServerContext struct {
	ctx        context.Context
	cancel     context.CancelFunc
	processor  Processor
	analyzer   Analyzer
	recordings RecordingLister
	tracker    *JobTracker
	queue      *queue.Queue
	metrics    *instrumentation.Metrics
	audit      *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context owning q. The queue may be
// nil when no provider calls will be made (status-only tooling).
func NewServerContext(ctx context.Context, processor Processor, q *queue.Queue, opts ...ContextOption) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		processor: processor,
		tracker:   NewJobTracker(),
		queue:     q,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Context returns the context cancelled at shutdown. Background jobs run
// under it.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Processor returns the wired processor.
func (sc *ServerContext) Processor() Processor {
	return sc.processor
}

// Analyzer returns the wired analyzer, or nil when direct analysis is
// not configured.
func (sc *ServerContext) Analyzer() Analyzer {
	return sc.analyzer
}

// Recordings returns the wired recording lister, or nil.
func (sc *ServerContext) Recordings() RecordingLister {
	return sc.recordings
}

// Metrics returns the tool metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Tracker returns the job tracker.
func (sc *ServerContext) Tracker() *JobTracker {
	return sc.tracker
}

// StartJob registers a job for meetingUUID and launches it in the
// background under the server context. The returned job ID can be polled
// on the jobs API or the job_status tool.
func (sc *ServerContext) StartJob(meetingUUID string) string {
	jobID := sc.tracker.Create(meetingUUID)

	go func() {
		ctx, span := instrumentation.StartSpan(sc.ctx, "job.process_recording",
			instrumentation.NewSpanAttributeBuilder().
				WithJob(jobID).
				WithMeeting(meetingUUID).
				Build()...)
		defer span.End()

		logger := logging.WithMeeting(logging.WithJob(slog.Default(), jobID), meetingUUID)

		start := time.Now()
		sc.tracker.Start(jobID)
		result, err := sc.processor.ProcessRecording(ctx, meetingUUID)
		if err != nil {
			logger.Error("recording job failed", logging.Err(err))
			sc.tracker.Fail(jobID, err)
			instrumentation.SetSpanError(span, err)
			if sc.audit != nil {
				sc.audit.LogJob(ctx, jobID, meetingUUID, JobStatusFailed, time.Since(start), err)
			}
			return
		}

		logger.Info("recording job completed",
			logging.Course(result.Course),
			slog.String("folder", result.SessionFolder))
		sc.tracker.Succeed(jobID, result)
		instrumentation.SetSpanSuccess(span)
		if sc.audit != nil {
			sc.audit.LogJob(ctx, jobID, meetingUUID, JobStatusSucceeded, time.Since(start), nil)
		}
	}()

	return jobID
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown stops intake, cancels running jobs, and drains the queue.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	sc.mu.Unlock()

	sc.cancel()

	if sc.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return sc.queue.Shutdown(ctx)
	}
	return nil
}
