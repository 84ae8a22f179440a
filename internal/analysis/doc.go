// Package analysis turns session transcripts into analysis documents:
// executive summary, pedagogical analysis, aha moments, engagement
// metrics, and a concise summary derived from the executive summary.
// Kinds run sequentially through the rate-limited request coordinator.
package analysis
