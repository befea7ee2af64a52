package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"financeiro/internal/core"
)

// AddGoal inserts a new goal. Goals always start with a zero current
// amount; advancing them is not the ledger's job.
func (s *Store) AddGoal(ctx context.Context, ownerID string, goal core.Goal) (core.Goal, error) {
	goal.OwnerID = ownerID
	if err := goal.Validate(); err != nil {
		return core.Goal{}, err
	}

	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return core.Goal{}, err
	}

	var deadline any
	if goal.Deadline != "" {
		deadline = goal.Deadline
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO goals (owner_id, name, target_cents, deadline)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		ownerID, goal.Name, goal.Target.Cents, deadline).Scan(&goal.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("add goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal added",
		"id", goal.ID, "owner", ownerID, "name", goal.Name,
		"target", goal.Target.String())

	return goal, nil
}

// ListGoals returns the owner's goals, newest first.
func (s *Store) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, COALESCE(deadline, '')
		FROM goals
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g := core.Goal{OwnerID: ownerID}
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.Deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpsertLimit sets the monthly ceiling for an expense category, creating
// the category when needed. Replace semantics: a second call for the same
// category overwrites the previous amount.
func (s *Store) UpsertLimit(ctx context.Context, ownerID, category string, limit core.Money) (core.SpendingLimit, error) {
	if limit.Cents <= 0 {
		return core.SpendingLimit{}, core.ErrInvalidLimitValue
	}

	var sl core.SpendingLimit
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureOwner(ctx, tx, ownerID, ""); err != nil {
			return err
		}
		categoryID, err := getOrCreateCategory(ctx, tx, ownerID, category, core.Expense)
		if err != nil {
			return err
		}
		sl = core.SpendingLimit{OwnerID: ownerID, CategoryID: categoryID, Limit: limit, Period: "monthly"}
		return tx.QueryRowContext(ctx, `
			INSERT INTO spending_limits (owner_id, category_id, limit_cents)
			VALUES (?, ?, ?)
			ON CONFLICT (owner_id, category_id) DO UPDATE SET limit_cents = excluded.limit_cents
			RETURNING id`,
			ownerID, categoryID, limit.Cents).Scan(&sl.ID)
	})
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("upsert limit: %w", err)
	}

	slog.InfoContext(ctx, "Spending limit set",
		"owner", ownerID, "category", category, "limit", limit.String())

	return sl, nil
}

// ExceededLimit reports one category over its monthly ceiling.
type ExceededLimit struct {
	Category string
	Limit    core.Money
	Spent    core.Money
	Excess   core.Money
}

// ExceededLimits compares the period's expense sums against every
// configured limit and returns only the categories over their ceiling.
func (s *Store) ExceededLimits(ctx context.Context, ownerID string, p core.Period) ([]ExceededLimit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, sl.limit_cents, COALESCE(SUM(e.amount_cents), 0) AS spent
		FROM spending_limits sl
		JOIN categories c ON sl.category_id = c.id
		LEFT JOIN entries e ON e.category_id = c.id
			AND e.owner_id = sl.owner_id
			AND e.kind = 'expense'
			AND strftime('%Y-%m', e.reference_date) = ?
		WHERE sl.owner_id = ?
		GROUP BY c.name, sl.limit_cents
		HAVING spent > sl.limit_cents`,
		p.String(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("exceeded limits: %w", err)
	}
	defer rows.Close()

	var exceeded []ExceededLimit
	for rows.Next() {
		var el ExceededLimit
		if err := rows.Scan(&el.Category, &el.Limit.Cents, &el.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan exceeded limit: %w", err)
		}
		el.Excess = core.Money{Cents: el.Spent.Cents - el.Limit.Cents}
		exceeded = append(exceeded, el)
	}
	return exceeded, rows.Err()
}
