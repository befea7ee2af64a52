package report

import (
	"context"
	"fmt"
	"log/slog"
)

// NewSink builds the report sink selected by configuration. Backend is
// "csv" or "sheets".
func NewSink(ctx context.Context, backend, reportsDir string, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch backend {
	case "csv":
		logger.Info("Initialized CSV report sink", "dir", reportsDir)
		return NewCSVSink(reportsDir, logger), nil
	case "sheets":
		sink, err := NewSheetsSinkFromEnv(ctx, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets sink: %w", err)
		}
		logger.Info("Initialized Google Sheets report sink")
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported report backend: %s", backend)
	}
}
