package storage

import (
	"context"
	"database/sql"
	"fmt"

	"financeiro/internal/core"
)

// EnsureOwner registers the caller identity on first use and keeps the
// display name current afterwards.
func (s *Store) EnsureOwner(ctx context.Context, ownerID, displayName string) error {
	return ensureOwner(ctx, s.db, ownerID, displayName)
}

func ensureOwner(ctx context.Context, q querier, ownerID, displayName string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO owners (id, display_name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name = ''
				THEN owners.display_name ELSE excluded.display_name END`,
		ownerID, displayName)
	if err != nil {
		return fmt.Errorf("ensure owner: %w", err)
	}
	return nil
}

// ListOwners returns every registered owner id, for the rollover sweep.
func (s *Store) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM owners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// SharedBalance sums every account balance across all owners. The ledger
// is shared: the household sees one number.
func (s *Store) SharedBalance(ctx context.Context) (core.Money, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_cents), 0) FROM accounts`).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("shared balance: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// ResetOwner cascades a delete across everything the owner has. It is
// all-or-nothing: a failure at any point leaves the owner untouched.
func (s *Store) ResetOwner(ctx context.Context, ownerID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		tables := []string{
			"entries", "goals", "spending_limits", "period_reports",
			"payment_methods", "categories", "responsible_parties",
			"accounts",
		}
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE owner_id = ?", table), ownerID); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM owners WHERE id = ?", ownerID); err != nil {
			return fmt.Errorf("reset owner row: %w", err)
		}
		return nil
	})
}
