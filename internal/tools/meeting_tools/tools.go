package meeting_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/server"
	"github.com/teemow/recap/internal/tools/batch"
	"github.com/teemow/recap/internal/tools/common"
	"github.com/teemow/recap/internal/vtt"
)

const dateLayout = "2006-01-02"

// RegisterMeetingTools registers the recording pipeline tools with the MCP server
func RegisterMeetingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List cloud recordings
	listRecordingsTool := mcp.NewTool("zoom_list_recordings",
		mcp.WithDescription("List Zoom cloud recordings for a user within a date range"),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Zoom user ID or email address whose recordings to list"),
		),
		mcp.WithString("from",
			mcp.Description("Start date (YYYY-MM-DD, default: 30 days ago)"),
		),
		mcp.WithString("to",
			mcp.Description("End date (YYYY-MM-DD, default: today)"),
		),
	)

	s.AddTool(listRecordingsTool, common.InstrumentedToolHandlerWithService(
		"zoom_list_recordings", "zoom", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListRecordings(ctx, request, sc)
		}))

	// Process a recording end to end
	processRecordingTool := mcp.NewTool("recording_process",
		mcp.WithDescription("Run the full pipeline for one or more Zoom recordings: download the transcript, generate analysis documents and archive everything to Google Drive. Returns job IDs to poll with job_status."),
		mcp.WithString("meeting_uuid",
			mcp.Required(),
			mcp.Description("Zoom meeting UUID, or an array of UUIDs for batch processing (from zoom_list_recordings or the recording.completed webhook)"),
		),
	)

	s.AddTool(processRecordingTool, common.InstrumentedToolHandlerWithService(
		"recording_process", "zoom", "process", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleProcessRecording(ctx, request, sc)
		}))

	// Analyze a transcript without archiving
	analyzeTranscriptTool := mcp.NewTool("transcript_analyze",
		mcp.WithDescription("Generate analysis documents from a WebVTT transcript without archiving anything"),
		mcp.WithString("transcript",
			mcp.Required(),
			mcp.Description("Transcript content in WebVTT format"),
		),
		mcp.WithString("chat_log",
			mcp.Description("In-meeting chat log to include as additional context (optional)"),
		),
		mcp.WithString("kinds",
			mcp.Description("Comma-separated analysis kinds to run: executive_summary, pedagogical_analysis, aha_moments, engagement_analysis (default: all)"),
		),
	)

	s.AddTool(analyzeTranscriptTool, common.InstrumentedToolHandlerWithService(
		"transcript_analyze", "model", "analyze", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAnalyzeTranscript(ctx, request, sc)
		}))

	// Job status
	jobStatusTool := mcp.NewTool("job_status",
		mcp.WithDescription("Get the status of a recording job started by recording_process or a webhook"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("Job ID returned when the job was started"),
		),
	)

	s.AddTool(jobStatusTool, common.InstrumentedToolHandler(
		"job_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleJobStatus(ctx, request, sc)
		}))

	return nil
}

func handleListRecordings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	userID, ok := common.GetStringArg(args, "user_id")
	if !ok {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	lister := sc.Recordings()
	if lister == nil {
		return mcp.NewToolResultError("Zoom client is not configured"), nil
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw, ok := common.GetStringArg(args, "from"); ok {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid from date %q: expected YYYY-MM-DD", raw)), nil
		}
		from = parsed
	}
	if raw, ok := common.GetStringArg(args, "to"); ok {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid to date %q: expected YYYY-MM-DD", raw)), nil
		}
		to = parsed
	}

	recordings, err := lister.ListRecordings(ctx, userID, from, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list recordings: %v", err)), nil
	}

	if len(recordings) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No recordings found for %s between %s and %s",
			userID, from.Format(dateLayout), to.Format(dateLayout))), nil
	}

	result := fmt.Sprintf("Found %d recording(s):\n\n", len(recordings))
	for i, rec := range recordings {
		result += fmt.Sprintf("%d. %s\n", i+1, rec.Topic)
		result += fmt.Sprintf("   Meeting UUID: %s\n", rec.UUID)
		result += fmt.Sprintf("   Host: %s\n", rec.HostEmail)
		result += fmt.Sprintf("   Start: %s\n", rec.StartTime.Format("2006-01-02 15:04 MST"))
		result += fmt.Sprintf("   Duration: %d min\n", rec.Duration)
		if rec.FindTranscript() == nil {
			result += "   Transcript: not available\n"
		}
	}

	return mcp.NewToolResultText(result), nil
}

func handleProcessRecording(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	meetingUUIDs, err := batch.ParseStringOrArray(args["meeting_uuid"], "meeting_uuid")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if sc.Processor() == nil {
		return mcp.NewToolResultError("recording pipeline is not configured"), nil
	}

	if len(meetingUUIDs) == 1 {
		jobID := sc.StartJob(meetingUUIDs[0])

		result := fmt.Sprintf("Job started for meeting %s\n", meetingUUIDs[0])
		result += fmt.Sprintf("Job ID: %s\n", jobID)
		result += "Use job_status with this ID to check progress."

		return mcp.NewToolResultText(result), nil
	}

	results := batch.Run(ctx, meetingUUIDs, func(ctx context.Context, meetingUUID string) (string, error) {
		return "job " + sc.StartJob(meetingUUID), nil
	})

	return mcp.NewToolResultText(batch.Format(results)), nil
}

func handleAnalyzeTranscript(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	transcript, ok := common.GetStringArg(args, "transcript")
	if !ok {
		return mcp.NewToolResultError("transcript is required"), nil
	}

	analyzer := sc.Analyzer()
	if analyzer == nil {
		return mcp.NewToolResultError("analysis service is not configured"), nil
	}

	req := analysis.Request{}
	if chatLog, ok := common.GetStringArg(args, "chat_log"); ok {
		req.ChatLog = chatLog
	}
	if raw, ok := common.GetStringArg(args, "kinds"); ok {
		for _, name := range strings.Split(raw, ",") {
			kind, valid := analysis.ParseKind(strings.TrimSpace(name))
			if !valid {
				return mcp.NewToolResultError(fmt.Sprintf("unknown analysis kind %q", strings.TrimSpace(name))), nil
			}
			req.Kinds = append(req.Kinds, kind)
		}
	}

	segments, err := vtt.Parse(strings.NewReader(transcript))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse transcript: %v", err)), nil
	}
	req.Dialogue = vtt.FormatDialogue(vtt.MergeConsecutive(segments))
	if req.Dialogue == "" {
		return mcp.NewToolResultError("transcript contains no dialogue"), nil
	}

	res, err := analyzer.Generate(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Analysis failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatAnalysisResult(res)), nil
}

func formatAnalysisResult(res *analysis.Result) string {
	var b strings.Builder
	if res.ExecutiveSummary != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(res.ExecutiveSummary)
		b.WriteString("\n\n")
	}
	if res.PedagogicalAnalysis != "" {
		b.WriteString("## Pedagogical Analysis\n\n")
		b.WriteString(res.PedagogicalAnalysis)
		b.WriteString("\n\n")
	}
	if res.AhaMoments != "" {
		b.WriteString("## Aha Moments\n\n")
		b.WriteString(res.AhaMoments)
		b.WriteString("\n\n")
	}
	if len(res.EngagementMetrics) > 0 {
		b.WriteString("## Engagement Metrics\n\n")
		for key, value := range res.EngagementMetrics {
			b.WriteString(fmt.Sprintf("- %s: %v\n", key, value))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "No analysis documents were generated."
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func handleJobStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	jobID, ok := common.GetStringArg(args, "job_id")
	if !ok {
		return mcp.NewToolResultError("job_id is required"), nil
	}

	job, found := sc.Tracker().Get(jobID)
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("unknown job: %s", jobID)), nil
	}

	result := fmt.Sprintf("Job: %s\n", job.ID)
	result += fmt.Sprintf("Meeting UUID: %s\n", job.MeetingUUID)
	result += fmt.Sprintf("Status: %s\n", job.Status)
	result += fmt.Sprintf("Created: %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.StartedAt != nil {
		result += fmt.Sprintf("Started: %s\n", job.StartedAt.Format(time.RFC3339))
	}
	if job.FinishedAt != nil {
		result += fmt.Sprintf("Finished: %s\n", job.FinishedAt.Format(time.RFC3339))
	}
	if job.Error != "" {
		result += fmt.Sprintf("Error: %s\n", job.Error)
	}
	if job.Result != nil {
		result += fmt.Sprintf("Course: %s\n", job.Result.Course)
		result += fmt.Sprintf("Session Folder: %s\n", job.Result.SessionFolder)
	}

	return mcp.NewToolResultText(result), nil
}
