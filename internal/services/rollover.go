package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	"financeiro/internal/report"
	"financeiro/internal/storage"
)

// RolloverEngine closes monthly periods: it exports the period snapshot
// through the report sink, then resets the ledger and carries a positive
// net forward. Each owner is closed independently; one owner failing
// never blocks the others.
type RolloverEngine struct {
	store       *storage.Store
	sink        report.Sink
	amqpClient  *amqp.Client
	concurrency int
}

func NewRolloverEngine(store *storage.Store, sink report.Sink, amqpClient *amqp.Client, concurrency int) *RolloverEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RolloverEngine{
		store:       store,
		sink:        sink,
		amqpClient:  amqpClient,
		concurrency: concurrency,
	}
}

// ClosedPeriod is the outcome of closing one owner's period.
type ClosedPeriod struct {
	OwnerID  string
	Period   core.Period
	Artifact string
	Totals   storage.PeriodTotals
	Carry    *core.Entry // nil when the period net was not positive
}

// ClosePeriodFor closes one period for one owner. The export happens
// before anything is deleted: if the artifact cannot be written, the
// ledger is left untouched. Closing an already closed or empty period
// is a no-op and returns nil.
func (e *RolloverEngine) ClosePeriodFor(ctx context.Context, ownerID string, p core.Period, now time.Time) (*ClosedPeriod, error) {
	closed, err := e.store.HasPeriodReport(ctx, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("check period report: %w", err)
	}
	if closed {
		slog.InfoContext(ctx, "Period already closed, skipping",
			"owner_id", ownerID, "period", p.String())
		return nil, nil
	}

	entries, err := e.store.EntriesForPeriod(ctx, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("load period entries: %w", err)
	}
	if len(entries) == 0 {
		slog.InfoContext(ctx, "Period has no entries, skipping",
			"owner_id", ownerID, "period", p.String())
		return nil, nil
	}

	totals, err := e.store.PeriodTotalsFor(ctx, ownerID, p)
	if err != nil {
		return nil, fmt.Errorf("period totals: %w", err)
	}

	rows := make([]report.Row, 0, len(entries))
	for _, pe := range entries {
		rows = append(rows, exportRow(pe))
	}

	// The artifact's final balance is the period's own net, not the live
	// account balance: entries outside the closing period stay out of it.
	artifact, err := e.sink.WriteReportArtifact(ctx, ownerID, p, rows, totals.Net)
	if err != nil {
		return nil, fmt.Errorf("write report artifact: %w", err)
	}

	carry, err := e.store.ClosePeriod(ctx, ownerID, p, artifact, totals.Net, now)
	if err != nil {
		return nil, fmt.Errorf("close period: %w", err)
	}

	if err := e.publishReportGenerated(ctx, ownerID, p, artifact); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report generated message",
			"owner_id", ownerID, "period", p.String(), "error", err)
		// Don't fail the close - the period is already archived
	}

	slog.InfoContext(ctx, "Period closed",
		"owner_id", ownerID,
		"period", p.String(),
		"entries", len(entries),
		"net", totals.Net.String(),
		"artifact", artifact)

	return &ClosedPeriod{
		OwnerID:  ownerID,
		Period:   p,
		Artifact: artifact,
		Totals:   totals,
		Carry:    carry,
	}, nil
}

// RunScheduledRollover closes the previous month for every known owner.
// Failures are logged per owner and do not stop the sweep; the returned
// count is the number of owners actually closed.
func (e *RolloverEngine) RunScheduledRollover(ctx context.Context, now time.Time) (int, error) {
	p := core.PeriodOf(now).Previous()

	owners, err := e.store.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}
	if len(owners) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Starting rollover sweep",
		"period", p.String(), "owners", len(owners))

	results := make([]*ClosedPeriod, len(owners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, ownerID := range owners {
		g.Go(func() error {
			closedPeriod, err := e.ClosePeriodFor(gctx, ownerID, p, now)
			if err != nil {
				slog.ErrorContext(gctx, "Rollover failed for owner",
					"owner_id", ownerID, "period", p.String(), "error", err)
				return nil // isolate owner failures
			}
			results[i] = closedPeriod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	processed := 0
	for _, r := range results {
		if r != nil {
			processed++
		}
	}

	slog.InfoContext(ctx, "Rollover sweep finished",
		"period", p.String(), "processed", processed, "owners", len(owners))

	return processed, nil
}

func (e *RolloverEngine) publishReportGenerated(ctx context.Context, ownerID string, p core.Period, artifact string) error {
	if e.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping report generated message")
		return nil
	}
	return e.amqpClient.PublishReportGenerated(ctx, ownerID, p.String(), artifact)
}

const exportDateLayout = "02/01/2006"

var kindLabels = map[core.EntryKind]string{
	core.Income:  "Receita",
	core.Expense: "Despesa",
}

func exportRow(pe storage.PeriodEntry) report.Row {
	return report.Row{
		Date:        pe.Entry.ReferenceDate.Format(exportDateLayout),
		Kind:        kindLabels[pe.Entry.Kind],
		Amount:      pe.Entry.Amount.String(),
		Category:    pe.CategoryName,
		Description: pe.Entry.Description,
		Responsible: pe.ResponsibleName,
		Method:      pe.MethodName,
		Installment: report.InstallmentMarker(pe.Entry.InstallmentIndex, pe.Entry.InstallmentTotal),
	}
}
