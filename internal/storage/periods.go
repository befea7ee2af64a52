package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"financeiro/internal/core"
)

// PeriodTotals aggregates one owner's month. Net can be negative.
type PeriodTotals struct {
	Income  core.Money
	Expense core.Money
	Net     core.Money
}

// CategoryTotal is one line of the per-category breakdown.
type CategoryTotal struct {
	Category string
	Kind     core.EntryKind
	Total    core.Money
}

// EntriesForPeriod returns the owner's entries whose reference date falls
// in the period, joined with category, responsible and method names,
// ordered the way the export lists them.
func (s *Store) EntriesForPeriod(ctx context.Context, ownerID string, p core.Period) ([]PeriodEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.account_id, e.responsible_party_id, e.category_id,
		       e.payment_method_id, e.kind, e.amount_cents, e.description,
		       e.posted_at, e.reference_date,
		       e.installment_index, e.installment_total,
		       c.name, r.name, m.name
		FROM entries e
		LEFT JOIN categories c ON e.category_id = c.id
		LEFT JOIN responsible_parties r ON e.responsible_party_id = r.id
		LEFT JOIN payment_methods m ON e.payment_method_id = m.id
		WHERE e.owner_id = ? AND strftime('%Y-%m', e.reference_date) = ?
		ORDER BY e.reference_date, e.kind DESC, e.id`,
		ownerID, p.String())
	if err != nil {
		return nil, fmt.Errorf("entries for period: %w", err)
	}
	defer rows.Close()

	var entries []PeriodEntry
	for rows.Next() {
		var (
			pe                              PeriodEntry
			accountID, responsibleID        sql.NullInt64
			categoryID, methodID            sql.NullInt64
			installmentIdx, installmentTot  sql.NullInt64
			kind, postedAt, referenceDate   string
			category, responsible, method   sql.NullString
		)
		if err := rows.Scan(&pe.Entry.ID, &accountID, &responsibleID, &categoryID,
			&methodID, &kind, &pe.Entry.Amount.Cents, &pe.Entry.Description,
			&postedAt, &referenceDate, &installmentIdx, &installmentTot,
			&category, &responsible, &method); err != nil {
			return nil, fmt.Errorf("scan period entry: %w", err)
		}
		pe.Entry.OwnerID = ownerID
		pe.Entry.AccountID = accountID.Int64
		pe.Entry.ResponsiblePartyID = responsibleID.Int64
		pe.Entry.CategoryID = categoryID.Int64
		pe.Entry.PaymentMethodID = methodID.Int64
		pe.Entry.Kind = core.EntryKind(kind)
		pe.Entry.InstallmentIndex = int(installmentIdx.Int64)
		pe.Entry.InstallmentTotal = int(installmentTot.Int64)
		pe.Entry.ReferenceDate = parseDate(referenceDate)
		if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
			pe.Entry.PostedAt = t
		}
		pe.CategoryName = category.String
		pe.ResponsibleName = responsible.String
		pe.MethodName = method.String
		entries = append(entries, pe)
	}
	return entries, rows.Err()
}

// PeriodTotalsFor computes income, expense and net for the period.
func (s *Store) PeriodTotalsFor(ctx context.Context, ownerID string, p core.Period) (PeriodTotals, error) {
	var t PeriodTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM entries
		WHERE owner_id = ? AND strftime('%Y-%m', reference_date) = ?`,
		ownerID, p.String()).Scan(&t.Income.Cents, &t.Expense.Cents)
	if err != nil {
		return PeriodTotals{}, fmt.Errorf("period totals: %w", err)
	}
	t.Net = core.Money{Cents: t.Income.Cents - t.Expense.Cents}
	return t, nil
}

// CategoryTotalsFor breaks the period down per category and kind, largest
// first.
func (s *Store) CategoryTotalsFor(ctx context.Context, ownerID string, p core.Period) ([]CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, ''), e.kind, SUM(e.amount_cents)
		FROM entries e
		LEFT JOIN categories c ON e.category_id = c.id
		WHERE e.owner_id = ? AND strftime('%Y-%m', e.reference_date) = ?
		GROUP BY c.name, e.kind
		ORDER BY SUM(e.amount_cents) DESC`,
		ownerID, p.String())
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var (
			ct   CategoryTotal
			kind string
		)
		if err := rows.Scan(&ct.Category, &kind, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Kind = core.EntryKind(kind)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
