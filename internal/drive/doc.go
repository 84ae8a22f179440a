// Package drive provides the Google Drive archival layer. Analysis
// artifacts and transcripts are filed into per-course, per-session
// folders, optionally scoped to a shared drive.
package drive
