package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"time"
)

const (
	// DefaultMaxOutputTokens caps a single analysis response.
	DefaultMaxOutputTokens = 4000

	// ConciseSummaryMaxTokens caps the concise summary response.
	ConciseSummaryMaxTokens = 1000

	// DefaultTemperature keeps analysis output mostly deterministic.
	DefaultTemperature = 0.2

	// DefaultInterKindDelay spaces out consecutive analysis kinds.
	DefaultInterKindDelay = 5 * time.Second
)

var fencedJSONRe = regexp.MustCompile("(?s)```json\n(.*?)\n```")

// Submitter sends a prompt to the model and returns its text response.
// The coordinator satisfies this.
type Submitter interface {
	Submit(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithInterKindDelay overrides the pause between analysis kinds.
func WithInterKindDelay(d time.Duration) Option {
	return func(s *Service) {
		s.interKindDelay = d
	}
}

// WithMaxOutputTokens overrides the per-response output token cap.
func WithMaxOutputTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOutputTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *Service) {
		s.temperature = t
	}
}

// WithSleep overrides how the service pauses, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) {
		s.sleep = fn
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service generates analysis documents from session transcripts.
type Service struct {
	submitter       Submitter
	interKindDelay  time.Duration
	maxOutputTokens int
	temperature     float64
	sleep           func(ctx context.Context, d time.Duration) error
	logger          *slog.Logger
}

// NewService creates an analysis service on top of a Submitter.
func NewService(submitter Submitter, opts ...Option) *Service {
	s := &Service{
		submitter:       submitter,
		interKindDelay:  DefaultInterKindDelay,
		maxOutputTokens: DefaultMaxOutputTokens,
		temperature:     DefaultTemperature,
		sleep:           sleepCtx,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the requested analysis kinds sequentially, pausing
// between kinds so consecutive large prompts do not pile into the rate
// limiter at once.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}

	result := &Result{}
	for i, kind := range kinds {
		s.logger.Info("Generating analysis",
			"kind", string(kind),
			"dialogue_chars", len(req.Dialogue))

		prompt, err := renderPrompt(kind, req.Dialogue, req.ChatLog, req.SchoolMapping)
		if err != nil {
			return nil, err
		}

		response, err := s.submitter.Submit(ctx, prompt, s.maxOutputTokens, s.temperature)
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", kind, err)
		}

		switch kind {
		case KindExecutiveSummary:
			result.ExecutiveSummary = response
		case KindPedagogicalAnalysis:
			result.PedagogicalAnalysis = response
		case KindAhaMoments:
			result.AhaMoments = response
		case KindEngagementAnalysis:
			result.EngagementMetrics = parseEngagementMetrics(response)
		}

		if i < len(kinds)-1 && s.interKindDelay > 0 {
			if err := s.sleep(ctx, s.interKindDelay); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// GenerateConciseSummary condenses an executive summary into a short
// scannable paragraph.
func (s *Service) GenerateConciseSummary(ctx context.Context, executiveSummary string) (string, error) {
	prompt := fmt.Sprintf(conciseSummaryPrompt, executiveSummary)

	response, err := s.submitter.Submit(ctx, prompt, ConciseSummaryMaxTokens, s.temperature)
	if err != nil {
		return "", fmt.Errorf("concise summary failed: %w", err)
	}
	return response, nil
}

// parseEngagementMetrics extracts the JSON object from an engagement
// response. Models usually honor the fenced-block instruction; when they
// do not, the raw text is preserved instead of failing the job.
func parseEngagementMetrics(response string) map[string]any {
	candidate := response
	if m := fencedJSONRe.FindStringSubmatch(response); m != nil {
		candidate = m[1]
	}

	var metrics map[string]any
	if err := json.Unmarshal([]byte(candidate), &metrics); err == nil {
		return metrics
	}
	return map[string]any{"raw_response": response}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
