package cmd

import (
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"zoom_list_recordings", "Zoom Tools"},
		{"recording_process", "Pipeline Tools"},
		{"transcript_analyze", "Pipeline Tools"},
		{"job_status", "Job Tools"},
		{"something_else", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getCategoryFromToolName(tt.name); got != tt.expected {
				t.Errorf("getCategoryFromToolName(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestGenerateToolsMarkdown(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("job_status",
			mcp.WithDescription("Get the status of a recording job"),
			mcp.WithString("job_id",
				mcp.Required(),
				mcp.Description("Job ID returned when the job was started"),
			),
		),
		mcp.NewTool("zoom_list_recordings",
			mcp.WithDescription("List Zoom cloud recordings"),
			mcp.WithString("user_id",
				mcp.Required(),
				mcp.Description("Zoom user ID or email"),
			),
			mcp.WithString("from",
				mcp.Description("Start date"),
			),
		),
	}

	markdown := generateToolsMarkdown(tools)

	if !strings.Contains(markdown, "# MCP Tools Reference") {
		t.Error("missing header")
	}
	if !strings.Contains(markdown, "## Zoom Tools") {
		t.Error("missing Zoom Tools category")
	}
	if !strings.Contains(markdown, "## Job Tools") {
		t.Error("missing Job Tools category")
	}
	if !strings.Contains(markdown, "### zoom_list_recordings") {
		t.Error("missing tool heading")
	}
	if !strings.Contains(markdown, "- `user_id` (required): Zoom user ID or email") {
		t.Errorf("missing required argument line:\n%s", markdown)
	}
	if !strings.Contains(markdown, "- `from` (optional): Start date") {
		t.Errorf("missing optional argument line:\n%s", markdown)
	}
}

func TestRunGenerateDocsWritesFile(t *testing.T) {
	outputFile := t.TempDir() + "/tools.md"

	if err := runGenerateDocs(outputFile); err != nil {
		t.Fatalf("runGenerateDocs() error = %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, tool := range []string{"zoom_list_recordings", "recording_process", "transcript_analyze", "job_status"} {
		if !strings.Contains(string(data), "### "+tool) {
			t.Errorf("generated docs missing tool %s", tool)
		}
	}
}
