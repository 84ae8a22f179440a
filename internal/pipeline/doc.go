// Package pipeline orchestrates the session pipeline end to end:
// fetch a recording, download and parse its transcript, generate
// analysis documents, archive everything to Drive, and record insight
// links in the recordings report.
package pipeline
