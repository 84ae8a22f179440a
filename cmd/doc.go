// Package cmd implements the command-line interface for recap.
//
// This package provides the following commands:
//   - serve: Start the Zoom webhook server that processes finished recordings
//   - process: Run the pipeline once for a meeting UUID or a local transcript
//   - backfill: Process all of a user's recordings within a date range
//   - mcp: Start the MCP server exposing the pipeline to AI assistants
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
