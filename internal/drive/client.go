package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/recap/internal/google"
)

const (
	// FolderMimeType is the MIME type Drive uses for folders.
	FolderMimeType = "application/vnd.google-apps.folder"

	fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents"
)

// Option configures a Client.
type Option func(*Client)

// WithSharedDrive scopes every operation to the given shared drive. The
// pipeline's course folders usually live on a shared drive so the service
// account can own nothing itself.
func WithSharedDrive(driveID string) Option {
	return func(c *Client) {
		c.sharedDriveID = driveID
	}
}

// Client wraps the Google Drive API for the archival layer.
type Client struct {
	service       *drive.Service
	sharedDriveID string
}

// NewClient creates a Drive client authenticated with the service-account
// key file.
func NewClient(ctx context.Context, credentialsFile string, opts ...Option) (*Client, error) {
	authOpts, err := google.ServiceOptions(credentialsFile, google.ScopeDrive)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	c := &Client{service: service}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newClientForService wires a Client around an existing Drive service,
// used by tests with an httptest endpoint.
func newClientForService(service *drive.Service, opts ...Option) *Client {
	c := &Client{service: service}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureFolder returns the folder named name under parentID, creating it
// when absent. Lookup matches exactly one level; nested paths are built by
// chaining EnsureFolder calls.
func (c *Client) EnsureFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}
	if parentID == "" {
		return nil, fmt.Errorf("parent folder ID is required")
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), FolderMimeType, parentID)

	call := c.service.Files.List().
		Context(ctx).
		Q(query).
		Fields(googleapi.Field("files(" + fileFields + ")"))
	c.applyDriveScope(call)

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return convertToFileInfo(list.Files[0]), nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}
	created, err := c.service.Files.Create(folder).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	return convertToFileInfo(created), nil
}

// UploadFile creates a file with the given content under options.ParentID.
func (c *Client) UploadFile(ctx context.Context, name string, content io.Reader, options *UploadOptions) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if content == nil {
		return nil, fmt.Errorf("file content is required")
	}

	file := &drive.File{Name: name}
	mimeType := ""
	if options != nil {
		if options.ParentID != "" {
			file.Parents = []string{options.ParentID}
		}
		file.Description = options.Description
		file.MimeType = options.MimeType
		mimeType = options.MimeType
	}

	created, err := c.service.Files.Create(file).
		Context(ctx).
		SupportsAllDrives(true).
		Media(content, googleapi.ContentType(mimeType)).
		Fields(googleapi.Field(fileFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %q: %w", name, err)
	}

	return convertToFileInfo(created), nil
}

// UploadString uploads in-memory content as a file, the common case for
// analysis artifacts.
func (c *Client) UploadString(ctx context.Context, name, content string, options *UploadOptions) (*FileInfo, error) {
	return c.UploadFile(ctx, name, strings.NewReader(content), options)
}

// ListFolders lists the folders directly under parentID.
func (c *Client) ListFolders(ctx context.Context, parentID string) ([]*FileInfo, error) {
	if parentID == "" {
		return nil, fmt.Errorf("parent folder ID is required")
	}

	query := fmt.Sprintf("mimeType = '%s' and '%s' in parents and trashed = false", FolderMimeType, parentID)
	call := c.service.Files.List().
		Context(ctx).
		Q(query).
		OrderBy("name").
		Fields(googleapi.Field("nextPageToken, files(" + fileFields + ")"))
	c.applyDriveScope(call)

	var folders []*FileInfo
	if err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			folders = append(folders, convertToFileInfo(f))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list folders under %s: %w", parentID, err)
	}

	return folders, nil
}

// GetFile retrieves metadata for one file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(googleapi.Field(fileFields)).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// applyDriveScope narrows a list call to the configured shared drive.
func (c *Client) applyDriveScope(call *drive.FilesListCall) {
	call.SupportsAllDrives(true).IncludeItemsFromAllDrives(true)
	if c.sharedDriveID != "" {
		call.Corpora("drive").DriveId(c.sharedDriveID)
	}
}

// escapeQuery escapes single quotes and backslashes for Drive's query
// language.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// convertToFileInfo converts a Drive API File to FileInfo.
func convertToFileInfo(f *drive.File) *FileInfo {
	info := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			info.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}

	return info
}
