// Package sheets keeps the Zoom recordings report spreadsheet in sync
// with the analysis pipeline, recording links to generated documents
// per session row.
package sheets
