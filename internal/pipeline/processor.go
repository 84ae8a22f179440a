package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/drive"
	"github.com/teemow/recap/internal/instrumentation"
	"github.com/teemow/recap/internal/logging"
	"github.com/teemow/recap/internal/sheets"
	"github.com/teemow/recap/internal/vtt"
	"github.com/teemow/recap/internal/zoom"
)

// Metrics receives per-stage timings and job outcomes. The
// instrumentation package provides an implementation.
type Metrics interface {
	ObserveStageDuration(ctx context.Context, stage string, d time.Duration)
	RecordJob(ctx context.Context, status string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStageDuration(context.Context, string, time.Duration) {}
func (noopMetrics) RecordJob(context.Context, string)                           {}

// Option configures a Processor.
type Option func(*Processor)

// WithReport wires the recordings report so processed sessions get their
// insight links recorded.
func WithReport(report Report) Option {
	return func(p *Processor) {
		p.report = report
	}
}

// WithDefaultKinds sets the analyses run for sessions that do not name
// their own, such as webhook-triggered jobs.
func WithDefaultKinds(kinds []analysis.Kind) Option {
	return func(p *Processor) {
		p.defaultKinds = kinds
	}
}

// WithMetrics wires pipeline metrics.
func WithMetrics(metrics Metrics) Option {
	return func(p *Processor) {
		p.metrics = metrics
	}
}

// WithLogger overrides the processor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// Processor runs the end-to-end session pipeline: recording to
// transcript to analysis to archived artifacts to report links.
type Processor struct {
	source       RecordingSource
	archive      Archive
	analyzer     Analyzer
	report       Report
	rootFolderID string
	defaultKinds []analysis.Kind
	metrics      Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewProcessor assembles a Processor. The report is optional; pass it
// with WithReport.
func NewProcessor(source RecordingSource, archive Archive, analyzer Analyzer, rootFolderID string, opts ...Option) *Processor {
	p := &Processor{
		source:       source,
		archive:      archive,
		analyzer:     analyzer,
		rootFolderID: rootFolderID,
		metrics:      noopMetrics{},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// stage opens a trace span and duration timer for one pipeline stage.
// The returned done func ends the span, marking it with err; the stage
// duration is only observed for stages that complete.
func (p *Processor) stage(ctx context.Context, name string) (context.Context, func(error)) {
	start := p.now()
	sctx, span := instrumentation.StartStageSpan(ctx, name)
	return sctx, func(err error) {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
			p.metrics.ObserveStageDuration(sctx, name, p.now().Sub(start))
		}
		span.End()
	}
}

// ProcessRecording fetches a meeting's cloud recording, downloads its
// transcript, and runs the full analysis pipeline on it.
func (p *Processor) ProcessRecording(ctx context.Context, meetingUUID string) (*JobResult, error) {
	sctx, done := p.stage(ctx, "fetch_recording")
	recording, err := p.source.GetRecording(sctx, meetingUUID)
	done(err)
	if err != nil {
		p.metrics.RecordJob(ctx, "failed")
		return nil, fmt.Errorf("failed to fetch recording %s: %w", meetingUUID, err)
	}

	transcriptFile := recording.FindTranscript()
	if transcriptFile == nil {
		p.metrics.RecordJob(ctx, "failed")
		return nil, fmt.Errorf("recording %s has no transcript file", meetingUUID)
	}

	sctx, done = p.stage(ctx, "download_transcript")
	vttBytes, err := p.source.DownloadTranscript(sctx, transcriptFile.DownloadURL)
	done(err)
	if err != nil {
		p.metrics.RecordJob(ctx, "failed")
		return nil, fmt.Errorf("failed to download transcript for %s: %w", meetingUUID, err)
	}

	return p.ProcessTranscript(ctx, vttBytes, SessionMeta{
		MeetingUUID: recording.UUID,
		Topic:       recording.Topic,
		HostEmail:   recording.HostEmail,
		StartTime:   recording.StartTime,
		Duration:    recording.Duration,
	})
}

// ProcessTranscript runs analysis and archival for a transcript that is
// already in hand, the entry point for CLI and direct API input.
func (p *Processor) ProcessTranscript(ctx context.Context, vttBytes []byte, meta SessionMeta) (*JobResult, error) {
	result, err := p.processTranscript(ctx, vttBytes, meta)
	if err != nil {
		p.metrics.RecordJob(ctx, "failed")
		return nil, err
	}
	p.metrics.RecordJob(ctx, "succeeded")
	return result, nil
}

func (p *Processor) processTranscript(ctx context.Context, vttBytes []byte, meta SessionMeta) (*JobResult, error) {
	topic := zoom.ParseTopic(meta.Topic)
	folderName := topic.FolderName(meta.StartTime)

	logger := p.logger.With(
		logging.Meeting(meta.MeetingUUID),
		logging.Course(topic.Course),
		slog.String("session_folder", folderName))
	logger.Info("Processing session transcript", "vtt_bytes", len(vttBytes))

	_, done := p.stage(ctx, "parse_transcript")
	segments, err := vtt.Parse(bytes.NewReader(vttBytes))
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	dialogue := vtt.FormatDialogue(vtt.MergeConsecutive(segments))
	if dialogue == "" {
		err = fmt.Errorf("transcript contains no dialogue")
		done(err)
		return nil, err
	}
	done(nil)

	kinds := meta.Kinds
	if len(kinds) == 0 {
		kinds = p.defaultKinds
	}

	sctx, done := p.stage(ctx, "analysis")
	analysisResult, err := p.analyzer.Generate(sctx, analysis.Request{
		Dialogue:      dialogue,
		ChatLog:       meta.ChatLog,
		Kinds:         kinds,
		SchoolMapping: meta.SchoolMapping,
	})
	if err != nil {
		done(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if analysisResult.ExecutiveSummary != "" {
		concise, err := p.analyzer.GenerateConciseSummary(sctx, analysisResult.ExecutiveSummary)
		if err != nil {
			done(err)
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		analysisResult.ConciseSummary = concise
	}
	done(nil)

	sctx, done = p.stage(ctx, "archive")
	courseFolder, err := p.archive.EnsureFolder(sctx, topic.Course, p.rootFolderID)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to prepare course folder: %w", err)
	}
	sessionFolder, err := p.archive.EnsureFolder(sctx, folderName, courseFolder.ID)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to prepare session folder: %w", err)
	}

	insightURLs, err := p.uploadArtifacts(sctx, sessionFolder.ID, string(vttBytes), meta, topic, analysisResult)
	done(err)
	if err != nil {
		return nil, err
	}

	if p.report != nil && len(insightURLs) > 0 {
		sctx, done = p.stage(ctx, "report")
		err = p.report.RecordInsightURLs(sctx, folderName, insightURLs)
		done(err)
		if err != nil {
			return nil, fmt.Errorf("failed to update report: %w", err)
		}
	}

	logger.Info("Session processed", "insight_urls", len(insightURLs))

	return &JobResult{
		Course:        topic.Course,
		SessionFolder: folderName,
		FolderID:      sessionFolder.ID,
		InsightURLs:   insightURLs,
	}, nil
}

// uploadArtifacts files the transcript, analysis documents, and session
// metadata into the session folder and returns report links keyed by
// insight column.
func (p *Processor) uploadArtifacts(ctx context.Context, folderID, transcript string, meta SessionMeta, topic zoom.TopicInfo, result *analysis.Result) (map[string]string, error) {
	opts := func(mimeType string) *drive.UploadOptions {
		return &drive.UploadOptions{ParentID: folderID, MimeType: mimeType}
	}

	if _, err := p.archive.UploadString(ctx, FileTranscript, transcript, opts("text/vtt")); err != nil {
		return nil, fmt.Errorf("failed to upload transcript: %w", err)
	}
	if meta.ChatLog != "" {
		if _, err := p.archive.UploadString(ctx, FileChatLog, meta.ChatLog, opts("text/plain")); err != nil {
			return nil, fmt.Errorf("failed to upload chat log: %w", err)
		}
	}

	insightURLs := make(map[string]string)
	markdown := []struct {
		name    string
		column  string
		content string
	}{
		{FileExecutiveSummary, sheets.ColumnExecutiveSummary, result.ExecutiveSummary},
		{FilePedagogicalAnalysis, sheets.ColumnPedagogicalAnalysis, result.PedagogicalAnalysis},
		{FileAhaMoments, sheets.ColumnAhaMoments, result.AhaMoments},
		{FileConciseSummary, sheets.ColumnConciseSummary, result.ConciseSummary},
	}
	for _, doc := range markdown {
		if doc.content == "" {
			continue
		}
		info, err := p.archive.UploadString(ctx, doc.name, doc.content, opts("text/markdown"))
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", doc.name, err)
		}
		insightURLs[doc.column] = info.WebViewLink
	}

	if len(result.EngagementMetrics) > 0 {
		encoded, err := json.MarshalIndent(result.EngagementMetrics, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode engagement metrics: %w", err)
		}
		info, err := p.archive.UploadString(ctx, FileEngagementMetrics, string(encoded), opts("application/json"))
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", FileEngagementMetrics, err)
		}
		insightURLs[sheets.ColumnEngagementMetrics] = info.WebViewLink
	}

	metadata, err := json.MarshalIndent(map[string]any{
		"meeting_uuid":     meta.MeetingUUID,
		"topic":            meta.Topic,
		"course":           topic.Course,
		"session_number":   topic.SessionNumber,
		"session_name":     topic.SessionName,
		"host_email":       meta.HostEmail,
		"start_time":       meta.StartTime.Format(time.RFC3339),
		"duration_minutes": meta.Duration,
		"processed_at":     p.now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session metadata: %w", err)
	}
	if _, err := p.archive.UploadString(ctx, FileSessionMetadata, string(metadata), opts("application/json")); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", FileSessionMetadata, err)
	}

	return insightURLs, nil
}
