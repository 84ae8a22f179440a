package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/recap/internal/logging"
)

const (
	// DefaultBaseURL is the Zoom REST API endpoint.
	DefaultBaseURL = "https://api.zoom.us/v2"

	// DefaultTokenURL is the server-to-server OAuth token endpoint.
	DefaultTokenURL = "https://zoom.us/oauth/token"

	listPageSize = 100
)

// Credentials identify a server-to-server OAuth app.
type Credentials struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// accountTokenSource fetches access tokens with Zoom's account_credentials
// grant. x/oauth2's clientcredentials flow cannot express this grant (Zoom
// requires the account_id form field alongside basic auth), so the token
// exchange is done by hand and wrapped in oauth2.ReuseTokenSource for
// caching and refresh.
type accountTokenSource struct {
	creds      Credentials
	tokenURL   string
	httpClient *http.Client
}

func (s *accountTokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {"account_credentials"},
		"account_id": {s.creds.AccountID},
	}

	req, err := http.NewRequest(http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.creds.ClientID, s.creds.ClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zoom token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("zoom token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	slog.Debug("zoom access token refreshed",
		"token", logging.SanitizeToken(decoded.AccessToken),
		"expires_in", decoded.ExpiresIn)

	return &oauth2.Token{
		AccessToken: decoded.AccessToken,
		TokenType:   decoded.TokenType,
		Expiry:      time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second),
	}, nil
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTokenURL overrides the OAuth token endpoint, mainly for tests.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
	}
}

// Client wraps the Zoom cloud-recording API behind server-to-server OAuth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string
}

// NewClient creates a Zoom client for the given server-to-server OAuth
// app. Tokens are fetched lazily and reused until expiry.
func NewClient(ctx context.Context, creds Credentials, opts ...Option) (*Client, error) {
	if creds.AccountID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("zoom credentials require account id, client id, and client secret")
	}

	c := &Client{
		baseURL:  DefaultBaseURL,
		tokenURL: DefaultTokenURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	source := &accountTokenSource{
		creds:      creds,
		tokenURL:   c.tokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.httpClient = oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, source))

	return c, nil
}

// GetRecording fetches the recording set for a meeting.
func (c *Client) GetRecording(ctx context.Context, meetingUUID string) (*Recording, error) {
	u := fmt.Sprintf("%s/meetings/%s/recordings?include_fields=ai_summary", c.baseURL, encodeMeetingUUID(meetingUUID))

	var rec Recording
	if err := c.getJSON(ctx, u, &rec); err != nil {
		return nil, fmt.Errorf("failed to get recording for meeting %s: %w", meetingUUID, err)
	}
	return &rec, nil
}

// ListRecordings lists a user's recordings within the date window,
// following pagination until exhausted. Dates are interpreted by Zoom as
// whole days.
func (c *Client) ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]Recording, error) {
	var all []Recording
	pageToken := ""

	for {
		q := url.Values{
			"from":      {from.Format("2006-01-02")},
			"to":        {to.Format("2006-01-02")},
			"page_size": {fmt.Sprint(listPageSize)},
		}
		if pageToken != "" {
			q.Set("next_page_token", pageToken)
		}
		u := fmt.Sprintf("%s/users/%s/recordings?%s", c.baseURL, url.PathEscape(userID), q.Encode())

		var page listRecordingsResponse
		if err := c.getJSON(ctx, u, &page); err != nil {
			return nil, fmt.Errorf("failed to list recordings for %s: %w", userID, err)
		}
		all = append(all, page.Meetings...)

		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}

// DownloadTranscript fetches a recording file's content. The OAuth
// transport attaches the bearer token and follows Zoom's redirecting
// download URLs.
func (c *Client) DownloadTranscript(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript body: %w", err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("zoom api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// encodeMeetingUUID prepares a meeting UUID for use in a path. Zoom
// requires UUIDs that begin with "/" or contain "//" to be double
// URL-encoded.
func encodeMeetingUUID(uuid string) string {
	if strings.HasPrefix(uuid, "/") || strings.Contains(uuid, "//") {
		return url.QueryEscape(url.QueryEscape(uuid))
	}
	return url.PathEscape(uuid)
}
