// Package report defines the export sink the rollover engine writes
// period snapshots to, with CSV file and Google Sheets implementations.
package report

import (
	"context"
	"fmt"

	"financeiro/internal/core"
)

// Row is one exported entry line. Everything is pre-rendered: sinks only
// lay columns out, they never format domain values.
type Row struct {
	Date        string
	Kind        string
	Amount      string
	Category    string
	Description string
	Responsible string
	Method      string
	Installment string // "[i/n]" for fixed series, otherwise empty
}

// Sink receives a period snapshot before the ledger is reset. The
// returned handle identifies the artifact (a file path, a sheet range)
// and is recorded with the PeriodReport.
type Sink interface {
	WriteReportArtifact(ctx context.Context, ownerID string, period core.Period, rows []Row, finalBalance core.Money) (string, error)
}

var header = []string{
	"Data", "Tipo", "Valor", "Categoria", "Descrição",
	"Responsável", "Método", "Parcela",
}

func (r Row) record() []string {
	return []string{
		r.Date, r.Kind, r.Amount, r.Category,
		r.Description, r.Responsible, r.Method, r.Installment,
	}
}

// InstallmentMarker renders the "[i/n]" tag for fixed-series entries and
// an empty string for everything else.
func InstallmentMarker(index, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("[%d/%d]", index, total)
}
