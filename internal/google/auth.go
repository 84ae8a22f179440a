package google

import (
	"fmt"
	"os"

	"google.golang.org/api/option"
)

// OAuth scopes used by the archival backends.
const (
	// ScopeDrive grants full Google Drive access. The pipeline creates
	// folders and uploads analysis artifacts, so read-only is not enough.
	ScopeDrive = "https://www.googleapis.com/auth/drive"

	// ScopeSpreadsheets grants read/write access to Google Sheets for the
	// session report updates.
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
)

// DefaultScopes are the scopes the pipeline's service account needs.
var DefaultScopes = []string{
	ScopeDrive,
	ScopeSpreadsheets,
}

// ServiceOptions builds the client options shared by every Google service
// client in the pipeline: service-account credentials from a JSON key file
// plus the requested scopes. Unlike an interactive OAuth flow there is no
// token cache or consent step; the key file is the whole credential.
func ServiceOptions(credentialsFile string, scopes ...string) ([]option.ClientOption, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("google credentials file is not configured")
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("google credentials file %s is not readable: %w", credentialsFile, err)
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(scopes...),
	}, nil
}
