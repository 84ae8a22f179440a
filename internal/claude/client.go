package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/recap/internal/instrumentation"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-3-opus-20240229"

	// DefaultCooldown is how long the client waits after a 429 before
	// surfacing the RateLimitError to the drain loop.
	DefaultCooldown = 30 * time.Second

	// DefaultTokensPerMinute is the provider budget the request queue
	// enforces when none is configured.
	DefaultTokensPerMinute = 30000

	// apiVersion is the value of the anthropic-version header.
	apiVersion = "2023-06-01"
)

// EstimateTokens approximates the token cost of text at 4 characters per
// token. This is a deliberately crude heuristic, not real tokenization;
// the provider's own accounting is authoritative and under-estimates show
// up as APIErrors rather than retries.
func EstimateTokens(text string) int {
	return len(text)/4 + 1
}

// Metrics receives model call observability events. instrumentation.Metrics
// implements it.
type Metrics interface {
	RecordModelRequest(ctx context.Context, status string, duration time.Duration)
	RecordSubmissionChunks(ctx context.Context, chunks int)
}

type noopMetrics struct{}

func (noopMetrics) RecordModelRequest(context.Context, string, time.Duration) {}
func (noopMetrics) RecordSubmissionChunks(context.Context, int)               {}

// Statuses reported to Metrics.RecordModelRequest.
const (
	statusSuccess     = "success"
	statusRateLimited = "rate_limited"
	statusError       = "error"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithModel sets the model name sent on every request.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithCooldown sets the fixed wait applied after a rate-limit response.
func WithCooldown(d time.Duration) ClientOption {
	return func(c *Client) {
		c.cooldown = d
	}
}

// WithSleep overrides the sleep primitive used for the rate-limit
// cooldown. Tests inject a recorder here instead of waiting for real time.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithClientLogger sets the client's logger. Defaults to slog.Default().
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClientMetrics sets the client's metrics recorder.
func WithClientMetrics(metrics Metrics) ClientOption {
	return func(c *Client) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// Client speaks the Anthropic messages API. It performs exactly one call
// per Complete invocation; throttling is waited out once and then surfaced,
// never silently retried, so the cost of a resubmission is always a
// caller's explicit decision.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cooldown   time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
	metrics    Metrics
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		model:      DefaultModel,
		cooldown:   DefaultCooldown,
		sleep:      sleepCtx,
		logger:     slog.Default(),
		metrics:    noopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete performs one messages call and returns the first text block of
// the response. A 429 waits the configured cooldown and then returns a
// *RateLimitError; any other non-2xx status returns an *APIError.
func (c *Client) Complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	ctx, span := instrumentation.StartBackendSpan(ctx, instrumentation.ServiceModel, instrumentation.OperationAnalyze)
	defer span.End()

	start := time.Now()
	text, err := c.complete(ctx, prompt, maxOutputTokens, temperature)
	c.metrics.RecordModelRequest(ctx, completionStatus(err), time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	return text, err
}

func (c *Client) complete(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       c.model,
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		message := decodeErrorMessage(respBody)
		c.logger.Warn("provider rate limit hit, cooling down",
			"cooldown", c.cooldown,
			"message", message)
		// Cooldown then surface. The caller decides whether to resubmit;
		// an automatic retry here could mask runaway cost.
		if err := c.sleep(ctx, c.cooldown); err != nil {
			return "", err
		}
		return "", &RateLimitError{Message: message}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope errorEnvelope
		if jsonErr := json.Unmarshal(respBody, &envelope); jsonErr == nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		return "", apiErr
	}

	var decoded messagesResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "response contains no content blocks"}
	}

	if decoded.Usage != nil {
		c.logger.Debug("provider call completed",
			"model", decoded.Model,
			"stop_reason", decoded.StopReason,
			"input_tokens", decoded.Usage.InputTokens,
			"output_tokens", decoded.Usage.OutputTokens)
	}

	return decoded.Content[0].Text, nil
}

// completionStatus maps a Complete outcome to a metric status label.
func completionStatus(err error) string {
	if err == nil {
		return statusSuccess
	}
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return statusRateLimited
	}
	return statusError
}

func decodeErrorMessage(body []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}

// sleepCtx sleeps for d or until ctx is done, returning the ctx error in
// the latter case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
