// Package meeting_tools provides MCP tools for the recording pipeline.
//
// This package registers tools that allow MCP clients to discover Zoom cloud
// recordings, run the full analysis-and-archival pipeline for a recording,
// analyze ad-hoc transcripts and poll background jobs.
//
// Available tools:
//
// Discovery (Read):
//   - zoom_list_recordings - List cloud recordings for a user within a date range
//   - job_status - Get the status of a background recording job
//
// Processing (Write):
//   - recording_process - Run the full pipeline for a recording, returns a job ID
//   - transcript_analyze - Generate analysis documents from a WebVTT transcript
//     without archiving anything
//
// Example usage:
//
//	# Find recent recordings for a host
//	zoom_list_recordings(user_id="teacher@example.com", from="2024-01-01")
//
//	# Kick off processing and poll for completion
//	recording_process(meeting_uuid="abc123==")
//	job_status(job_id="<returned id>")
//
//	# One-off analysis with a subset of documents
//	transcript_analyze(transcript="WEBVTT\n...", kinds="executive_summary,aha_moments")
package meeting_tools
