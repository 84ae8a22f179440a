package claude

import "fmt"

// RateLimitError signals that the provider throttled a request (HTTP 429).
// The client waits its configured cooldown before returning this error so
// that the caller, not the transport, decides whether to resubmit.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "claude: rate limited"
	}
	return fmt.Sprintf("claude: rate limited: %s", e.Message)
}

// APIError is any non-throttling failure reported by the provider. Type and
// Message carry the wire error body when the provider sent one.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("claude: api error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("claude: api error (status %d)", e.StatusCode)
}
