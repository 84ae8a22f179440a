package pipeline

import (
	"context"
	"time"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/drive"
	"github.com/teemow/recap/internal/zoom"
)

// Artifact file names inside a session folder.
const (
	FileTranscript          = "transcript.vtt"
	FileChatLog             = "chat_log.txt"
	FileExecutiveSummary    = "executive_summary.md"
	FilePedagogicalAnalysis = "pedagogical_analysis.md"
	FileAhaMoments          = "aha_moments.md"
	FileEngagementMetrics   = "engagement_metrics.json"
	FileConciseSummary      = "concise_summary.md"
	FileSessionMetadata     = "session_metadata.json"
)

// RecordingSource fetches recordings and transcripts. The Zoom client
// satisfies this.
type RecordingSource interface {
	GetRecording(ctx context.Context, meetingUUID string) (*zoom.Recording, error)
	DownloadTranscript(ctx context.Context, downloadURL string) ([]byte, error)
}

// Archive files session artifacts. The Drive client satisfies this.
type Archive interface {
	EnsureFolder(ctx context.Context, name, parentID string) (*drive.FileInfo, error)
	UploadString(ctx context.Context, name, content string, options *drive.UploadOptions) (*drive.FileInfo, error)
}

// Report records insight links per session. The Sheets client satisfies
// this.
type Report interface {
	RecordInsightURLs(ctx context.Context, sessionName string, urls map[string]string) error
}

// Analyzer generates analysis documents. The analysis service satisfies
// this.
type Analyzer interface {
	Generate(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	GenerateConciseSummary(ctx context.Context, executiveSummary string) (string, error)
}

// SessionMeta carries everything about a session that does not come from
// the transcript itself.
type SessionMeta struct {
	MeetingUUID string
	Topic       string
	HostEmail   string
	StartTime   time.Time
	Duration    int

	// ChatLog is the in-meeting chat text, when available.
	ChatLog string

	// Kinds restricts which analyses run. Empty means all.
	Kinds []analysis.Kind

	SchoolMapping map[string]string
}

// JobResult summarizes a processed session.
type JobResult struct {
	Course        string
	SessionFolder string
	FolderID      string

	// InsightURLs maps report column headers to Drive links.
	InsightURLs map[string]string
}
