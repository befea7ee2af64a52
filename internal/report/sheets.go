package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financeiro/internal/core"
)

// SheetsSink appends period reports to a Google Spreadsheet, one sheet
// tab per owner and period.
type SheetsSink struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewSheetsSinkFromEnv builds a SheetsSink from environment variables:
// GOOGLE_SPREADSHEET_ID plus one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsSinkFromEnv(ctx context.Context, logger *slog.Logger) (*SheetsSink, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("GOOGLE_SPREADSHEET_ID is required")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, err
	}
	return &SheetsSink{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	if raw := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); raw != "" {
		return gsheet.NewService(ctx,
			goption.WithCredentialsJSON([]byte(raw)),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		)
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("no Google credentials configured")
	}
	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	)
}

// WriteReportArtifact appends the report block to a per-owner tab and
// returns the spreadsheet range it landed in.
func (s *SheetsSink) WriteReportArtifact(ctx context.Context, ownerID string, period core.Period, rows []Row, finalBalance core.Money) (string, error) {
	if s.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheetName := fmt.Sprintf("relatorio_%s", ownerID)
	if err := s.ensureSheet(ctx, sheetName); err != nil {
		return "", err
	}

	values := make([][]any, 0, len(rows)+4)
	values = append(values, []any{fmt.Sprintf("Relatório %s", period.String())})
	values = append(values, toAny(header))
	for _, row := range rows {
		values = append(values, toAny(row.record()))
	}
	values = append(values, []any{""})
	values = append(values, []any{"Saldo Final", "", finalBalance.String()})

	rng := fmt.Sprintf("%s!A:H", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to append report to sheet %s: %w", sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	s.logger.InfoContext(ctx, "period report appended to spreadsheet",
		"owner_id", ownerID,
		"period", period.String(),
		"rows", len(rows),
		"range", ref,
	)
	return ref, nil
}

func (s *SheetsSink) ensureSheet(ctx context.Context, sheetName string) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetName, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
