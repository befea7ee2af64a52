package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/report"
	"financeiro/internal/storage"
)

// fakeSink records every artifact request; failFor makes it refuse one
// owner to exercise failure isolation.
type fakeSink struct {
	mu      sync.Mutex
	writes  []fakeWrite
	failFor string
}

type fakeWrite struct {
	ownerID      string
	period       core.Period
	rows         []report.Row
	finalBalance core.Money
}

func (s *fakeSink) WriteReportArtifact(_ context.Context, ownerID string, period core.Period, rows []report.Row, finalBalance core.Money) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ownerID == s.failFor {
		return "", errors.New("sink unavailable")
	}
	s.writes = append(s.writes, fakeWrite{ownerID, period, rows, finalBalance})
	return fmt.Sprintf("fake://%s/%s", ownerID, period), nil
}

func newTestEngine(t *testing.T, sink report.Sink) (*RolloverEngine, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRolloverEngine(store, sink, nil, 2), store
}

func seedJuly(t *testing.T, store *storage.Store, ownerID string) {
	t.Helper()
	ctx := context.Background()
	inJuly := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	// Net +150.00 for the period.
	if _, err := store.ApplyEntry(ctx, ownerID, storage.EntryInput{
		Kind: core.Income, Amount: core.Money{Cents: 300000},
		Category: "outros", ResponsibleName: ownerID, ReferenceDate: inJuly,
	}); err != nil {
		t.Fatalf("ApplyEntry() income error = %v", err)
	}
	if _, err := store.ApplyEntry(ctx, ownerID, storage.EntryInput{
		Kind: core.Expense, Amount: core.Money{Cents: 285000},
		Category: "casa", ResponsibleName: ownerID, ReferenceDate: inJuly,
	}); err != nil {
		t.Fatalf("ApplyEntry() expense error = %v", err)
	}
}

func TestRolloverEngine_ClosePeriodFor(t *testing.T) {
	sink := &fakeSink{}
	engine, store := newTestEngine(t, sink)
	ctx := context.Background()
	july := core.Period{Year: 2025, Month: time.July}
	closeTime := time.Date(2025, time.August, 1, 3, 0, 0, 0, time.UTC)

	seedJuly(t, store, "maria")

	closed, err := engine.ClosePeriodFor(ctx, "maria", july, closeTime)
	if err != nil {
		t.Fatalf("ClosePeriodFor() error = %v", err)
	}
	if closed == nil {
		t.Fatal("ClosePeriodFor() = nil, want closed period")
	}
	if closed.Totals.Net.Cents != 15000 {
		t.Errorf("Totals.Net = %d, want 15000", closed.Totals.Net.Cents)
	}
	if closed.Carry == nil || closed.Carry.Amount.Cents != 15000 {
		t.Errorf("Carry = %+v, want income of 15000", closed.Carry)
	}
	if closed.Artifact != "fake://maria/2025-07" {
		t.Errorf("Artifact = %q, want fake://maria/2025-07", closed.Artifact)
	}

	if len(sink.writes) != 1 {
		t.Fatalf("sink writes = %d, want 1", len(sink.writes))
	}
	write := sink.writes[0]
	if len(write.rows) != 2 {
		t.Errorf("exported rows = %d, want 2", len(write.rows))
	}
	if write.finalBalance.Cents != 15000 {
		t.Errorf("exported final balance = %d, want 15000", write.finalBalance.Cents)
	}

	// Closing again is a no-op: the period report already exists.
	again, err := engine.ClosePeriodFor(ctx, "maria", july, closeTime)
	if err != nil {
		t.Fatalf("ClosePeriodFor() rerun error = %v", err)
	}
	if again != nil {
		t.Errorf("ClosePeriodFor() rerun = %+v, want nil", again)
	}
	if len(sink.writes) != 1 {
		t.Errorf("sink writes after rerun = %d, want still 1", len(sink.writes))
	}
}

func TestRolloverEngine_CloseIgnoresEntriesOutsidePeriod(t *testing.T) {
	sink := &fakeSink{}
	engine, store := newTestEngine(t, sink)
	ctx := context.Background()
	july := core.Period{Year: 2025, Month: time.July}
	closeTime := time.Date(2025, time.August, 5, 3, 0, 0, 0, time.UTC)

	// July: +300.00. August already holds a 100.00 expense when July closes.
	if _, err := store.ApplyEntry(ctx, "maria", storage.EntryInput{
		Kind: core.Income, Amount: core.Money{Cents: 30000},
		Category: "outros", ResponsibleName: "Maria",
		ReferenceDate: time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("ApplyEntry() july income error = %v", err)
	}
	if _, err := store.ApplyEntry(ctx, "maria", storage.EntryInput{
		Kind: core.Expense, Amount: core.Money{Cents: 10000},
		Category: "casa", ResponsibleName: "Maria",
		ReferenceDate: time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("ApplyEntry() august expense error = %v", err)
	}

	closed, err := engine.ClosePeriodFor(ctx, "maria", july, closeTime)
	if err != nil {
		t.Fatalf("ClosePeriodFor() error = %v", err)
	}
	if closed == nil {
		t.Fatal("ClosePeriodFor() = nil, want closed period")
	}

	// The artifact reflects July alone, not the live balance.
	if len(sink.writes) != 1 {
		t.Fatalf("sink writes = %d, want 1", len(sink.writes))
	}
	write := sink.writes[0]
	if len(write.rows) != 1 {
		t.Errorf("exported rows = %d, want 1 (the July entry)", len(write.rows))
	}
	if write.finalBalance.Cents != 30000 {
		t.Errorf("exported final balance = %d, want 30000 (July net)", write.finalBalance.Cents)
	}

	// The carried 300.00 stays on the account next to August's -100.00.
	balance, err := store.SharedBalance(ctx)
	if err != nil {
		t.Fatalf("SharedBalance() error = %v", err)
	}
	if balance.Cents != 20000 {
		t.Errorf("shared balance after close = %d, want 20000", balance.Cents)
	}
}

func TestRolloverEngine_SinkFailureLeavesLedgerUntouched(t *testing.T) {
	sink := &fakeSink{failFor: "maria"}
	engine, store := newTestEngine(t, sink)
	ctx := context.Background()
	july := core.Period{Year: 2025, Month: time.July}
	closeTime := time.Date(2025, time.August, 1, 3, 0, 0, 0, time.UTC)

	seedJuly(t, store, "maria")

	if _, err := engine.ClosePeriodFor(ctx, "maria", july, closeTime); err == nil {
		t.Fatal("ClosePeriodFor() with failing sink = nil error, want error")
	}

	// Export failed before anything destructive ran.
	entries, err := store.EntriesForPeriod(ctx, "maria", july)
	if err != nil {
		t.Fatalf("EntriesForPeriod() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries after failed close = %d, want 2", len(entries))
	}
	closed, err := store.HasPeriodReport(ctx, "maria", july)
	if err != nil {
		t.Fatalf("HasPeriodReport() error = %v", err)
	}
	if closed {
		t.Error("HasPeriodReport() = true after failed export, want false")
	}
}

func TestRolloverEngine_EmptyPeriodSkipped(t *testing.T) {
	sink := &fakeSink{}
	engine, store := newTestEngine(t, sink)
	ctx := context.Background()

	if err := store.EnsureOwner(ctx, "maria", "Maria"); err != nil {
		t.Fatalf("EnsureOwner() error = %v", err)
	}

	closed, err := engine.ClosePeriodFor(ctx, "maria", core.Period{Year: 2025, Month: time.July}, time.Now())
	if err != nil {
		t.Fatalf("ClosePeriodFor() error = %v", err)
	}
	if closed != nil {
		t.Errorf("ClosePeriodFor() on empty period = %+v, want nil", closed)
	}
	if len(sink.writes) != 0 {
		t.Errorf("sink writes = %d, want 0", len(sink.writes))
	}
}

func TestRolloverEngine_SweepIsolatesOwnerFailures(t *testing.T) {
	sink := &fakeSink{failFor: "joao"}
	engine, store := newTestEngine(t, sink)
	ctx := context.Background()

	seedJuly(t, store, "maria")
	seedJuly(t, store, "joao")

	// August 1st: the sweep targets July.
	sweepTime := time.Date(2025, time.August, 1, 3, 0, 0, 0, time.UTC)
	processed, err := engine.RunScheduledRollover(ctx, sweepTime)
	if err != nil {
		t.Fatalf("RunScheduledRollover() error = %v", err)
	}
	if processed != 1 {
		t.Errorf("processed = %d, want 1 (joao's sink failed)", processed)
	}

	july := core.Period{Year: 2025, Month: time.July}
	mariaClosed, err := store.HasPeriodReport(ctx, "maria", july)
	if err != nil {
		t.Fatalf("HasPeriodReport(maria) error = %v", err)
	}
	if !mariaClosed {
		t.Error("maria's period not closed by the sweep")
	}
	joaoClosed, err := store.HasPeriodReport(ctx, "joao", july)
	if err != nil {
		t.Fatalf("HasPeriodReport(joao) error = %v", err)
	}
	if joaoClosed {
		t.Error("joao's period closed despite sink failure")
	}

	// A later sweep picks joao up once the sink recovers.
	sink.mu.Lock()
	sink.failFor = ""
	sink.mu.Unlock()
	processed, err = engine.RunScheduledRollover(ctx, sweepTime)
	if err != nil {
		t.Fatalf("RunScheduledRollover() retry error = %v", err)
	}
	if processed != 1 {
		t.Errorf("retry processed = %d, want 1 (only joao left)", processed)
	}
}
