package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/teemow/recap/internal/analysis"
	"github.com/teemow/recap/internal/drive"
	"github.com/teemow/recap/internal/sheets"
	"github.com/teemow/recap/internal/zoom"
)

const sampleTranscript = `WEBVTT

1
00:00:01.000 --> 00:00:04.000
Alice: Welcome everyone to the session.

2
00:00:05.000 --> 00:00:08.000
Bob: Thanks, glad to be here.
`

type fakeSource struct {
	recording  *zoom.Recording
	transcript []byte
	getErr     error
}

func (f *fakeSource) GetRecording(ctx context.Context, meetingUUID string) (*zoom.Recording, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.recording, nil
}

func (f *fakeSource) DownloadTranscript(ctx context.Context, downloadURL string) ([]byte, error) {
	return f.transcript, nil
}

type fakeArchive struct {
	folders []string
	uploads map[string]string
}

func (f *fakeArchive) EnsureFolder(ctx context.Context, name, parentID string) (*drive.FileInfo, error) {
	f.folders = append(f.folders, fmt.Sprintf("%s/%s", parentID, name))
	return &drive.FileInfo{ID: "folder-" + name, Name: name}, nil
}

func (f *fakeArchive) UploadString(ctx context.Context, name, content string, options *drive.UploadOptions) (*drive.FileInfo, error) {
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[name] = content
	return &drive.FileInfo{
		ID:          "file-" + name,
		Name:        name,
		WebViewLink: "https://drive.google.com/file/d/" + name + "/view",
	}, nil
}

type fakeAnalyzer struct {
	result    *analysis.Result
	dialogues []string
	err       error
}

func (f *fakeAnalyzer) Generate(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	f.dialogues = append(f.dialogues, req.Dialogue)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalyzer) GenerateConciseSummary(ctx context.Context, executiveSummary string) (string, error) {
	return "concise: " + executiveSummary, nil
}

type fakeReport struct {
	sessionName string
	urls        map[string]string
}

func (f *fakeReport) RecordInsightURLs(ctx context.Context, sessionName string, urls map[string]string) error {
	f.sessionName = sessionName
	f.urls = urls
	return nil
}

func fullResult() *analysis.Result {
	return &analysis.Result{
		ExecutiveSummary:    "exec",
		PedagogicalAnalysis: "pedagogy",
		AhaMoments:          "moments",
		EngagementMetrics:   map[string]any{"overall_engagement": "high"},
	}
}

func TestProcessRecording(t *testing.T) {
	source := &fakeSource{
		recording: &zoom.Recording{
			UUID:      "uuid1",
			Topic:     "Go Course - Session 3: Concurrency",
			HostEmail: "host@example.com",
			StartTime: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			Duration:  60,
			RecordingFiles: []zoom.RecordingFile{
				{FileType: "MP4", DownloadURL: "https://zoom.example/video"},
				{FileType: "TRANSCRIPT", DownloadURL: "https://zoom.example/vtt"},
			},
		},
		transcript: []byte(sampleTranscript),
	}
	archive := &fakeArchive{}
	analyzer := &fakeAnalyzer{result: fullResult()}
	report := &fakeReport{}

	processor := NewProcessor(source, archive, analyzer, "root1", WithReport(report))

	result, err := processor.ProcessRecording(context.Background(), "uuid1")
	if err != nil {
		t.Fatalf("ProcessRecording failed: %v", err)
	}

	if result.Course != "Go Course" {
		t.Errorf("Expected course Go Course, got %s", result.Course)
	}
	if result.SessionFolder != "Session_3_Concurrency_2024-01-15" {
		t.Errorf("Unexpected session folder: %s", result.SessionFolder)
	}

	wantFolders := []string{"root1/Go Course", "folder-Go Course/Session_3_Concurrency_2024-01-15"}
	if len(archive.folders) != 2 || archive.folders[0] != wantFolders[0] || archive.folders[1] != wantFolders[1] {
		t.Errorf("Unexpected folder creation order: %v", archive.folders)
	}

	for _, name := range []string{
		FileTranscript,
		FileExecutiveSummary,
		FilePedagogicalAnalysis,
		FileAhaMoments,
		FileEngagementMetrics,
		FileConciseSummary,
		FileSessionMetadata,
	} {
		if _, ok := archive.uploads[name]; !ok {
			t.Errorf("Expected upload of %s", name)
		}
	}
	if got := archive.uploads[FileConciseSummary]; got != "concise: exec" {
		t.Errorf("Unexpected concise summary content: %q", got)
	}
	if !strings.Contains(archive.uploads[FileSessionMetadata], `"course": "Go Course"`) {
		t.Errorf("Expected course in session metadata: %s", archive.uploads[FileSessionMetadata])
	}

	if report.sessionName != "Session_3_Concurrency_2024-01-15" {
		t.Errorf("Unexpected report session: %s", report.sessionName)
	}
	if len(report.urls) != 5 {
		t.Errorf("Expected 5 insight URLs, got %d: %v", len(report.urls), report.urls)
	}
	if report.urls[sheets.ColumnExecutiveSummary] != "https://drive.google.com/file/d/executive_summary.md/view" {
		t.Errorf("Unexpected executive summary URL: %s", report.urls[sheets.ColumnExecutiveSummary])
	}

	if len(analyzer.dialogues) != 1 || !strings.Contains(analyzer.dialogues[0], "Alice: Welcome everyone to the session.") {
		t.Errorf("Expected formatted dialogue, got %v", analyzer.dialogues)
	}
}

func TestProcessRecording_NoTranscript(t *testing.T) {
	source := &fakeSource{
		recording: &zoom.Recording{
			UUID:  "uuid1",
			Topic: "Go Course - Session 3: Concurrency",
			RecordingFiles: []zoom.RecordingFile{
				{FileType: "MP4", DownloadURL: "https://zoom.example/video"},
			},
		},
	}
	processor := NewProcessor(source, &fakeArchive{}, &fakeAnalyzer{}, "root1")

	_, err := processor.ProcessRecording(context.Background(), "uuid1")
	if err == nil {
		t.Fatal("Expected error for missing transcript")
	}
	if !strings.Contains(err.Error(), "no transcript") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestProcessTranscript_PartialResult(t *testing.T) {
	archive := &fakeArchive{}
	analyzer := &fakeAnalyzer{result: &analysis.Result{AhaMoments: "moments"}}
	report := &fakeReport{}
	processor := NewProcessor(&fakeSource{}, archive, analyzer, "root1", WithReport(report))

	result, err := processor.ProcessTranscript(context.Background(), []byte(sampleTranscript), SessionMeta{
		Topic:     "Weekly sync",
		StartTime: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("ProcessTranscript failed: %v", err)
	}

	if result.Course != "Unknown Course" {
		t.Errorf("Expected Unknown Course, got %s", result.Course)
	}
	if _, ok := archive.uploads[FileExecutiveSummary]; ok {
		t.Error("Did not expect executive summary upload")
	}
	if _, ok := archive.uploads[FileConciseSummary]; ok {
		t.Error("Did not expect concise summary upload without an executive summary")
	}
	if len(report.urls) != 1 {
		t.Errorf("Expected 1 insight URL, got %v", report.urls)
	}
}

func TestProcessTranscript_AnalysisError(t *testing.T) {
	archive := &fakeArchive{}
	analyzer := &fakeAnalyzer{err: errors.New("rate limited")}
	processor := NewProcessor(&fakeSource{}, archive, analyzer, "root1")

	_, err := processor.ProcessTranscript(context.Background(), []byte(sampleTranscript), SessionMeta{
		Topic:     "Weekly sync",
		StartTime: time.Now(),
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if len(archive.uploads) != 0 {
		t.Errorf("Expected no uploads after analysis failure, got %v", archive.uploads)
	}
}

func TestProcessTranscript_EmptyTranscript(t *testing.T) {
	processor := NewProcessor(&fakeSource{}, &fakeArchive{}, &fakeAnalyzer{}, "root1")

	_, err := processor.ProcessTranscript(context.Background(), []byte("WEBVTT\n"), SessionMeta{
		Topic:     "Weekly sync",
		StartTime: time.Now(),
	})
	if err == nil {
		t.Fatal("Expected error for empty transcript")
	}
}
