package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financeiro/internal/core"
)

// CSVSink writes period reports as CSV files under a fixed directory.
type CSVSink struct {
	dir    string
	logger *slog.Logger
}

func NewCSVSink(dir string, logger *slog.Logger) *CSVSink {
	return &CSVSink{dir: dir, logger: logger}
}

// WriteReportArtifact writes relatorio_{owner}_{YYYY_MM}.csv and returns
// its path. The file ends with a blank row followed by the final balance.
func (s *CSVSink) WriteReportArtifact(ctx context.Context, ownerID string, period core.Period, rows []Row, finalBalance core.Money) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	name := fmt.Sprintf("relatorio_%s_%04d_%02d.csv", ownerID, period.Year, int(period.Month))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}
	if err := w.Write([]string{""}); err != nil {
		return "", fmt.Errorf("failed to write report separator: %w", err)
	}
	if err := w.Write([]string{"Saldo Final", "", finalBalance.String()}); err != nil {
		return "", fmt.Errorf("failed to write final balance: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	s.logger.InfoContext(ctx, "period report written",
		"owner_id", ownerID,
		"period", period.String(),
		"rows", len(rows),
		"path", path,
	)
	return path, nil
}
