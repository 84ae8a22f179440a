package sheets

import (
	"context"
	"fmt"
	"strings"

	sheets "google.golang.org/api/sheets/v4"

	"github.com/teemow/recap/internal/google"
)

// Client updates the Zoom recordings report spreadsheet with links to
// generated analysis documents. All operations target the first sheet of
// the configured spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewClient creates a Sheets client authenticated with the
// service-account key file.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	authOpts, err := google.ServiceOptions(credentialsFile, google.ScopeSpreadsheets)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, authOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{service: service, spreadsheetID: spreadsheetID}, nil
}

// newClientForService wires a Client around an existing Sheets service,
// used by tests with an httptest endpoint.
func newClientForService(service *sheets.Service, spreadsheetID string) *Client {
	return &Client{service: service, spreadsheetID: spreadsheetID}
}

// ExistingInsightURLs returns the insight links already recorded for the
// session, keyed by column header. Sessions are matched by substring in
// the first column, the same way session folders are named after report
// rows.
func (c *Client) ExistingInsightURLs(ctx context.Context, sessionName string) (map[string]string, error) {
	title, err := c.firstSheetTitle(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := c.readRows(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]string{}, nil
	}

	headers := rows[0]
	row := findSessionRow(rows, sessionName)
	if row < 0 {
		return map[string]string{}, nil
	}

	urls := make(map[string]string)
	for _, column := range InsightColumns {
		idx := indexOf(headers, column)
		if idx < 0 || idx >= len(rows[row]) {
			continue
		}
		if value := rows[row][idx]; value != "" {
			urls[column] = value
		}
	}
	return urls, nil
}

// RecordInsightURLs writes the given insight links into the session's
// report row. Missing insight columns are appended to the header row
// first.
func (c *Client) RecordInsightURLs(ctx context.Context, sessionName string, urls map[string]string) error {
	if len(urls) == 0 {
		return nil
	}

	title, err := c.firstSheetTitle(ctx)
	if err != nil {
		return err
	}

	rows, err := c.readRows(ctx, title)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("report spreadsheet is empty")
	}

	headers := rows[0]
	row := findSessionRow(rows, sessionName)
	if row < 0 {
		return fmt.Errorf("session %q not found in report", sessionName)
	}

	var updates []*sheets.ValueRange
	for _, column := range InsightColumns {
		url, ok := urls[column]
		if !ok || url == "" {
			continue
		}

		idx := indexOf(headers, column)
		if idx < 0 {
			idx = len(headers)
			headers = append(headers, column)
			updates = append(updates, &sheets.ValueRange{
				Range:  fmt.Sprintf("%s!%s1", title, columnLetter(idx)),
				Values: [][]interface{}{{column}},
			})
		}

		updates = append(updates, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", title, columnLetter(idx), row+1),
			Values: [][]interface{}{{url}},
		})
	}

	if len(updates) == 0 {
		return nil
	}

	_, err = c.service.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             updates,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// firstSheetTitle resolves the title of the spreadsheet's first sheet.
func (c *Client) firstSheetTitle(ctx context.Context) (string, error) {
	meta, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet has no sheets")
	}
	return meta.Sheets[0].Properties.Title, nil
}

// readRows fetches the sheet contents as string cells.
func (c *Client) readRows(ctx context.Context, title string) ([][]string, error) {
	result, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read report values: %w", err)
	}

	rows := make([][]string, 0, len(result.Values))
	for _, raw := range result.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findSessionRow returns the zero-based index of the first data row whose
// first column contains sessionName, or -1.
func findSessionRow(rows [][]string, sessionName string) int {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && strings.Contains(rows[i][0], sessionName) {
			return i
		}
	}
	return -1
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// columnLetter converts a zero-based column index into A1 notation.
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
