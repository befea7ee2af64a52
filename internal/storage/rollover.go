package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"financeiro/internal/core"
)

// CarryDescription marks the entry that seeds a new period with the
// previous period's positive net.
const CarryDescription = "Saldo do mês anterior"

// HasPeriodReport reports whether a rollover already covered the period,
// which makes re-invocations within the same period no-ops.
func (s *Store) HasPeriodReport(ctx context.Context, ownerID string, p core.Period) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM period_reports
		WHERE owner_id = ? AND month = ? AND year = ?`,
		ownerID, int(p.Month), p.Year).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check period report: %w", err)
	}
	return n > 0, nil
}

// ListPeriodReports returns the owner's report history, newest first.
func (s *Store) ListPeriodReports(ctx context.Context, ownerID string) ([]core.PeriodReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, month, year, artifact_path, generated_at
		FROM period_reports
		WHERE owner_id = ?
		ORDER BY year DESC, month DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list period reports: %w", err)
	}
	defer rows.Close()

	var reports []core.PeriodReport
	for rows.Next() {
		r := core.PeriodReport{OwnerID: ownerID}
		var generatedAt string
		if err := rows.Scan(&r.ID, &r.Month, &r.Year, &r.ArtifactPath, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan period report: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			r.GeneratedAt = t
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// ClosePeriod is the destructive half of a rollover, run only after the
// export artifact has been written. In one transaction it records the
// PeriodReport, deletes the period's entries, reconciles the account
// balances the deletions touched, and seeds the new period with a carry
// entry against the principal account when the net was positive, so the
// carried amount stays on the balance. A non-positive net carries
// nothing.
func (s *Store) ClosePeriod(ctx context.Context, ownerID string, p core.Period, artifactPath string, net core.Money, now time.Time) (*core.Entry, error) {
	var carried *core.Entry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// The unique (owner, month, year) constraint turns concurrent
		// closes of the same period into an error here, before anything
		// is deleted.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO period_reports (owner_id, month, year, artifact_path, generated_at)
			VALUES (?, ?, ?, ?, ?)`,
			ownerID, int(p.Month), p.Year, artifactPath,
			now.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record period report: %w", err)
		}

		// Reconcile balances for the account-bound entries about to go.
		rows, err := tx.QueryContext(ctx, `
			SELECT account_id,
			       SUM(CASE WHEN kind = 'income' THEN amount_cents ELSE -amount_cents END)
			FROM entries
			WHERE owner_id = ? AND account_id IS NOT NULL
			  AND strftime('%Y-%m', reference_date) = ?
			GROUP BY account_id`,
			ownerID, p.String())
		if err != nil {
			return fmt.Errorf("sum period entries per account: %w", err)
		}
		type accountDelta struct {
			id    int64
			cents int64
		}
		var deltas []accountDelta
		for rows.Next() {
			var d accountDelta
			if err := rows.Scan(&d.id, &d.cents); err != nil {
				rows.Close()
				return fmt.Errorf("scan account delta: %w", err)
			}
			deltas = append(deltas, d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		for _, d := range deltas {
			if _, err := adjustBalance(ctx, tx, d.id, -d.cents); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM entries
			WHERE owner_id = ? AND strftime('%Y-%m', reference_date) = ?`,
			ownerID, p.String()); err != nil {
			return fmt.Errorf("delete period entries: %w", err)
		}

		if net.Cents > 0 {
			account, err := principalAccount(ctx, tx, ownerID)
			if err != nil {
				return err
			}
			entry := core.Entry{
				OwnerID:       ownerID,
				AccountID:     account.ID,
				Kind:          core.Income,
				Amount:        net,
				Description:   CarryDescription,
				PostedAt:      now.UTC(),
				ReferenceDate: now,
			}
			entry.ID, err = insertEntry(ctx, tx, entry)
			if err != nil {
				return err
			}
			if _, err := adjustBalance(ctx, tx, account.ID, entry.Signed()); err != nil {
				return err
			}
			carried = &entry
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("close period %s: %w", p, err)
	}

	slog.InfoContext(ctx, "Period closed",
		"owner", ownerID,
		"period", p.String(),
		"net", net.String(),
		"carried", carried != nil,
		"artifact", artifactPath)

	return carried, nil
}
