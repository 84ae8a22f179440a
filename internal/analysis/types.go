package analysis

// Kind identifies one analysis document generated from a transcript.
type Kind string

const (
	KindExecutiveSummary    Kind = "executive_summary"
	KindPedagogicalAnalysis Kind = "pedagogical_analysis"
	KindAhaMoments          Kind = "aha_moments"
	KindEngagementAnalysis  Kind = "engagement_analysis"
)

// DefaultKinds is the full set of analyses run for a session, in order.
var DefaultKinds = []Kind{
	KindExecutiveSummary,
	KindPedagogicalAnalysis,
	KindAhaMoments,
	KindEngagementAnalysis,
}

// ParseKind validates a kind name from user input.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindExecutiveSummary, KindPedagogicalAnalysis, KindAhaMoments, KindEngagementAnalysis:
		return Kind(s), true
	}
	return "", false
}

// Request describes one analysis run over a formatted transcript.
type Request struct {
	// Dialogue is the speaker-attributed transcript text.
	Dialogue string

	// ChatLog is the in-meeting chat, appended to each prompt as
	// additional context when non-empty.
	ChatLog string

	// Kinds selects which analyses to run. Empty means DefaultKinds.
	Kinds []Kind

	// SchoolMapping maps participant names to schools for the
	// engagement analysis.
	SchoolMapping map[string]string
}

// Result holds the generated analysis documents.
type Result struct {
	ExecutiveSummary    string
	PedagogicalAnalysis string
	AhaMoments          string
	EngagementMetrics   map[string]any
	ConciseSummary      string
}
