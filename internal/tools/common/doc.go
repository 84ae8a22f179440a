// Package common provides shared helpers for MCP tool implementations:
// argument extraction and the instrumented handler wrappers that record
// tool metrics and audit entries.
package common
