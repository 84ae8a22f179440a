// Package batch provides common utilities for batch operations across MCP tools.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Running an operation for a list of IDs with per-item failure handling
//   - Formatting batch results in a consistent JSON structure
package batch
