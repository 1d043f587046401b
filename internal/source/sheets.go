package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsSource reads the expense export straight out of a Google Sheet and
// renders it to CSV text, so the one parser handles both source kinds.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

// NewSheetsSource builds a read-only Sheets client from service-account
// credentials (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
func NewSheetsSource(ctx context.Context, spreadsheetID, readRange string) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if readRange == "" {
		readRange = "Expenses"
	}

	credentialsJSON, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

func loadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

func (s *SheetsSource) Fetch(ctx context.Context) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read sheet range %q: %w", s.readRange, err)
	}
	text, err := renderCSV(resp.Values)
	if err != nil {
		return "", fmt.Errorf("render sheet range %q: %w", s.readRange, err)
	}
	return text, nil
}

// renderCSV turns the sheet's cell grid into CSV text. Cells are rendered
// with fmt so numeric cells survive; quoting is left to the csv writer.
func renderCSV(values [][]interface{}) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range values {
		fields := make([]string, len(row))
		for i, cell := range row {
			fields[i] = fmt.Sprint(cell)
		}
		if err := w.Write(fields); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return b.String(), nil
}
