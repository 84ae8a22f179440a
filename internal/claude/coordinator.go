package claude

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/recap/internal/chunk"
	"github.com/teemow/recap/internal/queue"
)

const (
	// DefaultCallCeiling is the maximum estimated token cost allowed for a
	// single provider call before a prompt is chunked.
	DefaultCallCeiling = 15000

	// DefaultChunkBaseDelay is the fixed part of the pause between
	// sequential chunk submissions.
	DefaultChunkBaseDelay = 5 * time.Second

	// chunkDelayPerToken scales the inter-chunk pause with chunk size:
	// one extra second per 10000 estimated tokens.
	chunkDelayPerToken = time.Second / 10000
)

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCallCeiling sets the per-call token ceiling above which Submit
// splits the prompt into chunks.
func WithCallCeiling(ceiling int) CoordinatorOption {
	return func(c *Coordinator) {
		c.ceiling = ceiling
	}
}

// WithChunkBaseDelay sets the fixed part of the inter-chunk pause.
func WithChunkBaseDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.baseDelay = d
	}
}

// WithCoordinatorSleep overrides the sleep primitive used for inter-chunk
// pacing. Tests inject a recorder here.
func WithCoordinatorSleep(sleep func(ctx context.Context, d time.Duration) error) CoordinatorOption {
	return func(c *Coordinator) {
		c.sleep = sleep
	}
}

// WithCoordinatorLogger sets the coordinator's logger.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithCoordinatorMetrics sets the coordinator's metrics recorder.
func WithCoordinatorMetrics(metrics Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// Coordinator is the submit-and-await facade over the request queue. Every
// analysis call goes through Submit, which hides whether the prompt fit in
// one provider call or had to be split: callers always get exactly one
// combined result or one error.
//
// A Coordinator is an explicitly constructed value, wired up by the
// composition root and passed to whoever needs it. There is no package
// level instance.
type Coordinator struct {
	queue     *queue.Queue
	ceiling   int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	logger    *slog.Logger
	metrics   Metrics
}

// NewCoordinator creates a Coordinator submitting into q.
func NewCoordinator(q *queue.Queue, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		queue:     q,
		ceiling:   DefaultCallCeiling,
		baseDelay: DefaultChunkBaseDelay,
		sleep:     sleepCtx,
		logger:    slog.Default(),
		metrics:   noopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit sends prompt to the provider and returns the response text. A
// prompt whose estimated cost exceeds the per-call ceiling is split,
// submitted chunk by chunk through the same queue, and the chunk responses
// are joined with blank lines. Any chunk failure aborts the remaining
// chunks and discards already-completed chunk results.
func (c *Coordinator) Submit(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	estimated := EstimateTokens(prompt) + maxOutputTokens
	if estimated <= c.ceiling {
		c.metrics.RecordSubmissionChunks(ctx, 1)
		return c.submitOne(ctx, prompt, maxOutputTokens, temperature, estimated)
	}

	c.logger.Info("prompt exceeds call ceiling, splitting into chunks",
		"estimated_tokens", estimated,
		"ceiling", c.ceiling)
	return c.submitChunked(ctx, prompt, maxOutputTokens, temperature)
}

// submitOne enqueues a single request and awaits its resolution.
func (c *Coordinator) submitOne(ctx context.Context, prompt string, maxOutputTokens int, temperature float64, estimated int) (string, error) {
	pending, err := c.queue.Enqueue(ctx, prompt, maxOutputTokens, temperature, estimated)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue request: %w", err)
	}
	return pending.Wait(ctx)
}

// submitChunked splits the prompt body and submits each rendered chunk
// prompt sequentially. Between chunks it pauses for the base delay plus a
// term proportional to the chunk's estimated cost to smooth provider load.
// Interleaved callers can drain between two of these chunks; chunked
// submissions are deliberately not atomic with respect to the queue.
//
// The chunk budget reserves the preamble and output tokens but not the
// per-chunk "part K of N" annotation or the joining blank lines, so a
// rendered chunk's estimate can land a few tokens above the ceiling. Like
// the 4-characters-per-token heuristic itself, this slack is accepted:
// the ceiling is a soft budget, not a hard provider limit.
func (c *Coordinator) submitChunked(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	preamble, _ := chunk.SplitPreamble(prompt)

	budgetTokens := c.ceiling - EstimateTokens(preamble) - maxOutputTokens
	if budgetTokens <= 0 {
		return "", fmt.Errorf("no token budget left for document chunks: preamble and output reserve %d tokens of a %d ceiling",
			EstimateTokens(preamble)+maxOutputTokens, c.ceiling)
	}

	plan := chunk.BuildPlan(prompt, budgetTokens*4)
	prompts := plan.Prompts()
	c.logger.Info("split prompt into chunks", "chunks", len(prompts))
	c.metrics.RecordSubmissionChunks(ctx, len(prompts))

	results := make([]string, 0, len(prompts))
	for i, chunkPrompt := range prompts {
		chunkEstimated := EstimateTokens(chunkPrompt) + maxOutputTokens

		c.logger.Debug("submitting chunk",
			"chunk", i+1,
			"total", len(prompts),
			"estimated_tokens", chunkEstimated)

		text, err := c.submitOne(ctx, chunkPrompt, maxOutputTokens, temperature, chunkEstimated)
		if err != nil {
			// No partial results: completed chunk texts are dropped with
			// the failed submission.
			return "", fmt.Errorf("chunk %d of %d failed: %w", i+1, len(prompts), err)
		}
		results = append(results, text)

		if i < len(prompts)-1 {
			delay := c.baseDelay + time.Duration(chunkEstimated)*chunkDelayPerToken
			c.logger.Debug("pausing before next chunk", "delay", delay)
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}

	return strings.Join(results, "\n\n"), nil
}
