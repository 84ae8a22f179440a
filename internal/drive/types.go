package drive

import "time"

// FileInfo is the subset of Drive file metadata the pipeline works with.
type FileInfo struct {
	// ID is the file's Drive identifier.
	ID string `json:"id"`

	// Name is the file or folder name.
	Name string `json:"name"`

	// MimeType is the Drive MIME type; folders use FolderMimeType.
	MimeType string `json:"mimeType"`

	// Size is the content size in bytes (zero for folders).
	Size int64 `json:"size,omitempty"`

	// CreatedTime is when the file was created.
	CreatedTime time.Time `json:"createdTime"`

	// ModifiedTime is when the file was last modified.
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink opens the file in the Drive UI. The session report
	// records these links for each uploaded insight.
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders.
	Parents []string `json:"parents,omitempty"`
}

// UploadOptions control file creation.
type UploadOptions struct {
	// ParentID is the folder the file is created in.
	ParentID string

	// MimeType is the content type; Drive sniffs it when empty.
	MimeType string

	// Description is an optional file description.
	Description string
}
