package storage

import (
	"context"
	"testing"
	"time"

	"financeiro/internal/core"
)

func TestClosePeriod(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	july := core.Period{Year: 2025, Month: time.July}
	inJuly := time.Date(2025, time.July, 12, 0, 0, 0, 0, time.UTC)
	closeTime := time.Date(2025, time.August, 1, 3, 0, 0, 0, time.UTC)

	// 3000.00 income, 2850.00 expense: net +150.00.
	if _, err := store.ApplyEntry(ctx, "maria", EntryInput{
		Kind: core.Income, Amount: core.Money{Cents: 300000},
		Category: "outros", ResponsibleName: "Maria", ReferenceDate: inJuly,
	}); err != nil {
		t.Fatalf("ApplyEntry() income error = %v", err)
	}
	if _, err := store.ApplyEntry(ctx, "maria", EntryInput{
		Kind: core.Expense, Amount: core.Money{Cents: 285000},
		Category: "casa", ResponsibleName: "Maria", ReferenceDate: inJuly,
	}); err != nil {
		t.Fatalf("ApplyEntry() expense error = %v", err)
	}

	totals, err := store.PeriodTotalsFor(ctx, "maria", july)
	if err != nil {
		t.Fatalf("PeriodTotalsFor() error = %v", err)
	}
	if totals.Net.Cents != 15000 {
		t.Fatalf("period net = %d, want 15000", totals.Net.Cents)
	}

	carry, err := store.ClosePeriod(ctx, "maria", july, "/reports/relatorio_maria_2025_07.csv", totals.Net, closeTime)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}
	if carry == nil {
		t.Fatal("ClosePeriod() carry = nil, want carry entry for positive net")
	}
	if carry.Amount.Cents != 15000 || carry.Kind != core.Income {
		t.Errorf("carry = %v %d cents, want income 15000", carry.Kind, carry.Amount.Cents)
	}
	if carry.Description != CarryDescription {
		t.Errorf("carry description = %q, want %q", carry.Description, CarryDescription)
	}

	// July is empty, August holds only the carry.
	julyEntries, err := store.EntriesForPeriod(ctx, "maria", july)
	if err != nil {
		t.Fatalf("EntriesForPeriod(july) error = %v", err)
	}
	if len(julyEntries) != 0 {
		t.Errorf("july entries after close = %d, want 0", len(julyEntries))
	}
	august := july.Next()
	augustEntries, err := store.EntriesForPeriod(ctx, "maria", august)
	if err != nil {
		t.Fatalf("EntriesForPeriod(august) error = %v", err)
	}
	if len(augustEntries) != 1 || augustEntries[0].Entry.Description != CarryDescription {
		t.Errorf("august entries = %+v, want exactly the carry entry", augustEntries)
	}

	// The deleted entries' balance contribution was reversed and the carry
	// was posted against the principal account, so the balance equals the
	// carried net — the money does not vanish with the closed period.
	if augustEntries[0].Entry.AccountID == 0 {
		t.Error("carry entry has no account, want principal account")
	}
	account, err := store.PrincipalAccount(ctx, "maria")
	if err != nil {
		t.Fatalf("PrincipalAccount() error = %v", err)
	}
	if account.Balance.Cents != 15000 {
		t.Errorf("balance after close = %d, want 15000 (carried net)", account.Balance.Cents)
	}

	closed, err := store.HasPeriodReport(ctx, "maria", july)
	if err != nil {
		t.Fatalf("HasPeriodReport() error = %v", err)
	}
	if !closed {
		t.Error("HasPeriodReport() = false after close, want true")
	}

	// A second close of the same period trips the uniqueness guard.
	if _, err := store.ClosePeriod(ctx, "maria", july, "elsewhere.csv", totals.Net, closeTime); err == nil {
		t.Error("ClosePeriod() rerun = nil error, want unique constraint error")
	}
}

func TestClosePeriod_NegativeNetCarriesNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	july := core.Period{Year: 2025, Month: time.July}
	inJuly := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	closeTime := time.Date(2025, time.August, 1, 3, 0, 0, 0, time.UTC)

	if _, err := store.ApplyEntry(ctx, "maria", EntryInput{
		Kind: core.Expense, Amount: core.Money{Cents: 40000},
		Category: "lazer", ResponsibleName: "Maria", ReferenceDate: inJuly,
	}); err != nil {
		t.Fatalf("ApplyEntry() error = %v", err)
	}

	totals, err := store.PeriodTotalsFor(ctx, "maria", july)
	if err != nil {
		t.Fatalf("PeriodTotalsFor() error = %v", err)
	}

	carry, err := store.ClosePeriod(ctx, "maria", july, "r.csv", totals.Net, closeTime)
	if err != nil {
		t.Fatalf("ClosePeriod() error = %v", err)
	}
	if carry != nil {
		t.Errorf("ClosePeriod() carry = %+v, want nil for negative net", carry)
	}

	augustEntries, err := store.EntriesForPeriod(ctx, "maria", july.Next())
	if err != nil {
		t.Fatalf("EntriesForPeriod() error = %v", err)
	}
	if len(augustEntries) != 0 {
		t.Errorf("august entries = %d, want 0", len(augustEntries))
	}

	// A debt is not carried: the account returns to zero.
	account, err := store.PrincipalAccount(ctx, "maria")
	if err != nil {
		t.Fatalf("PrincipalAccount() error = %v", err)
	}
	if account.Balance.Cents != 0 {
		t.Errorf("balance after close = %d, want 0", account.Balance.Cents)
	}
}

func TestListPeriodReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	closeTime := time.Date(2025, time.September, 1, 3, 0, 0, 0, time.UTC)

	if err := store.EnsureOwner(ctx, "maria", "Maria"); err != nil {
		t.Fatalf("EnsureOwner() error = %v", err)
	}
	for _, p := range []core.Period{
		{Year: 2025, Month: time.June},
		{Year: 2025, Month: time.July},
	} {
		if _, err := store.ClosePeriod(ctx, "maria", p, "relatorio_"+p.String()+".csv", core.Money{}, closeTime); err != nil {
			t.Fatalf("ClosePeriod(%s) error = %v", p, err)
		}
	}

	reports, err := store.ListPeriodReports(ctx, "maria")
	if err != nil {
		t.Fatalf("ListPeriodReports() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("ListPeriodReports() = %d reports, want 2", len(reports))
	}
	// Newest first.
	if reports[0].Month != int(time.July) || reports[1].Month != int(time.June) {
		t.Errorf("ListPeriodReports() order = %d, %d, want July then June", reports[0].Month, reports[1].Month)
	}
	if reports[0].GeneratedAt.IsZero() {
		t.Error("ListPeriodReports() GeneratedAt not parsed")
	}
}
