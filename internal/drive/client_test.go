package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func TestConvertToFileInfo(t *testing.T) {
	driveFile := &drive.File{
		Id:           "file123",
		Name:         "executive_summary.md",
		MimeType:     "text/markdown",
		Size:         2048,
		CreatedTime:  "2024-01-01T10:00:00Z",
		ModifiedTime: "2024-01-02T15:30:00Z",
		WebViewLink:  "https://drive.google.com/file/d/file123/view",
		Parents:      []string{"parent1"},
	}

	info := convertToFileInfo(driveFile)

	if info.ID != "file123" {
		t.Errorf("Expected ID file123, got %s", info.ID)
	}
	if info.Name != "executive_summary.md" {
		t.Errorf("Expected Name executive_summary.md, got %s", info.Name)
	}
	if info.MimeType != "text/markdown" {
		t.Errorf("Expected MimeType text/markdown, got %s", info.MimeType)
	}
	if info.Size != 2048 {
		t.Errorf("Expected Size 2048, got %d", info.Size)
	}
	if info.WebViewLink != "https://drive.google.com/file/d/file123/view" {
		t.Errorf("Unexpected WebViewLink %s", info.WebViewLink)
	}
	if len(info.Parents) != 1 || info.Parents[0] != "parent1" {
		t.Errorf("Unexpected Parents %v", info.Parents)
	}

	wantCreated := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !info.CreatedTime.Equal(wantCreated) {
		t.Errorf("Expected CreatedTime %v, got %v", wantCreated, info.CreatedTime)
	}
	wantModified := time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC)
	if !info.ModifiedTime.Equal(wantModified) {
		t.Errorf("Expected ModifiedTime %v, got %v", wantModified, info.ModifiedTime)
	}
}

func TestConvertToFileInfo_InvalidTimestamps(t *testing.T) {
	info := convertToFileInfo(&drive.File{
		Id:           "f1",
		CreatedTime:  "not-a-time",
		ModifiedTime: "",
	})

	if !info.CreatedTime.IsZero() {
		t.Errorf("Expected zero CreatedTime, got %v", info.CreatedTime)
	}
	if !info.ModifiedTime.IsZero() {
		t.Errorf("Expected zero ModifiedTime, got %v", info.ModifiedTime)
	}
}

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Physics 101", "Physics 101"},
		{"Bob's Course", `Bob\'s Course`},
		{`path\name`, `path\\name`},
	}

	for _, tt := range tests {
		if got := escapeQuery(tt.input); got != tt.want {
			t.Errorf("escapeQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func newTestDriveClient(t *testing.T, mux *http.ServeMux, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	service, err := drive.NewService(context.Background(),
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Failed to create Drive service: %v", err)
	}

	return newClientForService(service, opts...)
}

func TestEnsureFolder_Existing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "name = 'Physics 101'") {
			t.Errorf("Query missing folder name: %s", q)
		}
		if !strings.Contains(q, "'root123' in parents") {
			t.Errorf("Query missing parent: %s", q)
		}
		json.NewEncoder(w).Encode(&drive.FileList{
			Files: []*drive.File{{Id: "folder1", Name: "Physics 101", MimeType: FolderMimeType}},
		})
	})

	client := newTestDriveClient(t, mux)

	info, err := client.EnsureFolder(context.Background(), "Physics 101", "root123")
	if err != nil {
		t.Fatalf("EnsureFolder failed: %v", err)
	}
	if info.ID != "folder1" {
		t.Errorf("Expected folder1, got %s", info.ID)
	}
}

func TestEnsureFolder_Creates(t *testing.T) {
	var created bool

	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			created = true
			var file drive.File
			if err := json.NewDecoder(r.Body).Decode(&file); err != nil {
				t.Fatalf("Failed to decode create body: %v", err)
			}
			if file.Name != "Session 3" {
				t.Errorf("Expected name Session 3, got %s", file.Name)
			}
			if file.MimeType != FolderMimeType {
				t.Errorf("Expected folder mime type, got %s", file.MimeType)
			}
			if len(file.Parents) != 1 || file.Parents[0] != "course1" {
				t.Errorf("Unexpected parents %v", file.Parents)
			}
			json.NewEncoder(w).Encode(&drive.File{Id: "new-folder", Name: file.Name, MimeType: FolderMimeType})
			return
		}
		json.NewEncoder(w).Encode(&drive.FileList{})
	})

	client := newTestDriveClient(t, mux)

	info, err := client.EnsureFolder(context.Background(), "Session 3", "course1")
	if err != nil {
		t.Fatalf("EnsureFolder failed: %v", err)
	}
	if !created {
		t.Error("Expected folder to be created")
	}
	if info.ID != "new-folder" {
		t.Errorf("Expected new-folder, got %s", info.ID)
	}
}

func TestEnsureFolder_SharedDrive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("driveId"); got != "shared1" {
			t.Errorf("Expected driveId shared1, got %s", got)
		}
		if got := r.URL.Query().Get("corpora"); got != "drive" {
			t.Errorf("Expected corpora drive, got %s", got)
		}
		if got := r.URL.Query().Get("includeItemsFromAllDrives"); got != "true" {
			t.Errorf("Expected includeItemsFromAllDrives true, got %s", got)
		}
		json.NewEncoder(w).Encode(&drive.FileList{
			Files: []*drive.File{{Id: "folder1", Name: "Physics 101"}},
		})
	})

	client := newTestDriveClient(t, mux, WithSharedDrive("shared1"))

	if _, err := client.EnsureFolder(context.Background(), "Physics 101", "root123"); err != nil {
		t.Fatalf("EnsureFolder failed: %v", err)
	}
}

func TestEnsureFolder_Validation(t *testing.T) {
	client := newTestDriveClient(t, http.NewServeMux())

	if _, err := client.EnsureFolder(context.Background(), "", "parent"); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := client.EnsureFolder(context.Background(), "name", ""); err == nil {
		t.Error("Expected error for empty parent")
	}
}

func TestUploadString(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(&drive.File{
			Id:          "uploaded1",
			Name:        "aha_moments.md",
			WebViewLink: "https://drive.google.com/file/d/uploaded1/view",
		})
	})

	client := newTestDriveClient(t, mux)

	info, err := client.UploadString(context.Background(), "aha_moments.md", "# Aha Moments\n", &UploadOptions{
		ParentID: "session-folder",
		MimeType: "text/markdown",
	})
	if err != nil {
		t.Fatalf("UploadString failed: %v", err)
	}
	if info.ID != "uploaded1" {
		t.Errorf("Expected uploaded1, got %s", info.ID)
	}
	if info.WebViewLink == "" {
		t.Error("Expected WebViewLink to be set")
	}
}

func TestUploadFile_Validation(t *testing.T) {
	client := newTestDriveClient(t, http.NewServeMux())

	if _, err := client.UploadFile(context.Background(), "", strings.NewReader("x"), nil); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := client.UploadFile(context.Background(), "file.md", nil, nil); err == nil {
		t.Error("Expected error for nil content")
	}
}
