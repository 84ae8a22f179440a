package sheets

// Column headers in the Zoom recordings report that hold links to
// generated analysis documents.
const (
	ColumnExecutiveSummary    = "Executive Summary URL"
	ColumnPedagogicalAnalysis = "Pedagogical Analysis URL"
	ColumnAhaMoments          = "Aha Moments URL"
	ColumnEngagementMetrics   = "Engagement Metrics URL"
	ColumnConciseSummary      = "Concise Summary URL"
)

// InsightColumns lists the report columns managed by the pipeline, in
// report order.
var InsightColumns = []string{
	ColumnExecutiveSummary,
	ColumnPedagogicalAnalysis,
	ColumnAhaMoments,
	ColumnEngagementMetrics,
	ColumnConciseSummary,
}
