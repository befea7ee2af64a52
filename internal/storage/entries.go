package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"financeiro/internal/core"
)

// EntryInput carries everything the store needs to post one entry. All
// names are get-or-created inside the posting transaction.
type EntryInput struct {
	Kind            core.EntryKind
	Amount          core.Money
	Category        string
	MethodName      string
	ResponsibleName string
	Description     string
	ReferenceDate   time.Time // zero means today
}

// AppliedEntry is the typed success value of ApplyEntry.
type AppliedEntry struct {
	Entry           core.Entry
	CategoryName    string
	ResponsibleName string
	MethodName      string
	NewBalance      core.Money
}

// DeletedEntry summarizes an entry removed by id.
type DeletedEntry struct {
	ID           int64
	Kind         core.EntryKind
	Amount       core.Money
	CategoryName string
	Description  string
}

// PeriodEntry is an entry joined with its reference names, the shape the
// export artifact and the month views consume.
type PeriodEntry struct {
	Entry           core.Entry
	CategoryName    string
	ResponsibleName string
	MethodName      string
}

// ApplyEntry posts one entry: it resolves the principal account, the
// responsible party, the category and the payment method, inserts the
// entry and adjusts the account balance, all in a single transaction. On
// failure nothing is applied.
func (s *Store) ApplyEntry(ctx context.Context, ownerID string, in EntryInput) (AppliedEntry, error) {
	// Kind is not pre-validated here: the schema CHECK rejects it inside
	// the transaction, which exercises the all-or-nothing guarantee.
	if err := in.Amount.Validate(); err != nil {
		return AppliedEntry{}, err
	}
	if in.MethodName == "" {
		in.MethodName = core.DefaultMethodName
	}
	if in.ReferenceDate.IsZero() {
		in.ReferenceDate = time.Now()
	}

	var applied AppliedEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureOwner(ctx, tx, ownerID, in.ResponsibleName); err != nil {
			return err
		}
		account, err := principalAccount(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		responsibleID, err := getOrCreateResponsible(ctx, tx, ownerID, in.ResponsibleName)
		if err != nil {
			return err
		}
		categoryID, err := getOrCreateCategory(ctx, tx, ownerID, in.Category, in.Kind)
		if err != nil {
			return err
		}
		methodID, err := getOrCreatePaymentMethod(ctx, tx, ownerID, in.MethodName)
		if err != nil {
			return err
		}

		entry := core.Entry{
			OwnerID:            ownerID,
			AccountID:          account.ID,
			ResponsiblePartyID: responsibleID,
			CategoryID:         categoryID,
			PaymentMethodID:    methodID,
			Kind:               in.Kind,
			Amount:             in.Amount,
			Description:        in.Description,
			PostedAt:           time.Now().UTC(),
			ReferenceDate:      in.ReferenceDate,
		}
		entry.ID, err = insertEntry(ctx, tx, entry)
		if err != nil {
			return err
		}

		newBalance, err := adjustBalance(ctx, tx, account.ID, entry.Signed())
		if err != nil {
			return err
		}

		applied = AppliedEntry{
			Entry:           entry,
			CategoryName:    in.Category,
			ResponsibleName: in.ResponsibleName,
			MethodName:      in.MethodName,
			NewBalance:      newBalance,
		}
		return nil
	})
	if err != nil {
		return AppliedEntry{}, fmt.Errorf("apply entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry applied",
		"id", applied.Entry.ID,
		"owner", ownerID,
		"kind", applied.Entry.Kind,
		"amount", applied.Entry.Amount.String(),
		"category", applied.CategoryName)

	return applied, nil
}

func insertEntry(ctx context.Context, q querier, e core.Entry) (int64, error) {
	var accountID, responsibleID, categoryID, methodID any
	if e.AccountID != 0 {
		accountID = e.AccountID
	}
	if e.ResponsiblePartyID != 0 {
		responsibleID = e.ResponsiblePartyID
	}
	if e.CategoryID != 0 {
		categoryID = e.CategoryID
	}
	if e.PaymentMethodID != 0 {
		methodID = e.PaymentMethodID
	}
	var installmentIndex, installmentTotal any
	if e.InstallmentTotal != 0 {
		installmentIndex = e.InstallmentIndex
		installmentTotal = e.InstallmentTotal
	}

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO entries (
			owner_id, account_id, responsible_party_id, category_id,
			payment_method_id, kind, amount_cents, description,
			posted_at, reference_date, installment_index, installment_total
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		e.OwnerID, accountID, responsibleID, categoryID, methodID,
		string(e.Kind), e.Amount.Cents, e.Description,
		e.PostedAt.Format(time.RFC3339), formatDate(e.ReferenceDate),
		installmentIndex, installmentTotal).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return id, nil
}

func adjustBalance(ctx context.Context, q querier, accountID, deltaCents int64) (core.Money, error) {
	var balance core.Money
	err := q.QueryRowContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?
		WHERE id = ?
		RETURNING balance_cents`,
		deltaCents, accountID).Scan(&balance.Cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

// GenerateFixed seeds a fixed-expense series: one entry per calendar
// month starting with the current one, each dated the first of its month
// and tagged with its installment position. The whole series is one
// transaction; a failure leaves no partial series behind.
//
// Fixed entries carry no account: they represent committed future spend
// and only hit the running balance math when their month is closed.
func (s *Store) GenerateFixed(ctx context.Context, ownerID, category string, amount core.Money, months int, now time.Time) ([]core.Entry, error) {
	if months < 1 || months > 12 {
		return nil, core.ErrInvalidInstallmentCount
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}

	var series []core.Entry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureOwner(ctx, tx, ownerID, ""); err != nil {
			return err
		}
		categoryID, err := getOrCreateCategory(ctx, tx, ownerID, category, core.Expense)
		if err != nil {
			return err
		}

		start := core.PeriodOf(now)
		for i := 0; i < months; i++ {
			month := start.Start().AddDate(0, i, 0)
			entry := core.Entry{
				OwnerID:          ownerID,
				CategoryID:       categoryID,
				Kind:             core.Expense,
				Amount:           amount,
				Description:      fmt.Sprintf("%s (Fixo)", category),
				PostedAt:         time.Now().UTC(),
				ReferenceDate:    month,
				InstallmentIndex: i + 1,
				InstallmentTotal: months,
			}
			entry.ID, err = insertEntry(ctx, tx, entry)
			if err != nil {
				return err
			}
			series = append(series, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate fixed series: %w", err)
	}

	slog.InfoContext(ctx, "Fixed series generated",
		"owner", ownerID, "category", category, "months", months)

	return series, nil
}

// DeleteEntry removes one entry, requiring both id and owner to match so
// callers cannot delete across owners. The account balance is reconciled
// in the same transaction, keeping it equal to the sum of surviving
// entries.
func (s *Store) DeleteEntry(ctx context.Context, entryID int64, ownerID string) (DeletedEntry, error) {
	var deleted DeletedEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			accountID    sql.NullInt64
			kind         string
			amountCents  int64
			description  string
			categoryName sql.NullString
		)
		err := tx.QueryRowContext(ctx, `
			SELECT e.account_id, e.kind, e.amount_cents, e.description, c.name
			FROM entries e
			LEFT JOIN categories c ON e.category_id = c.id
			WHERE e.id = ? AND e.owner_id = ?`,
			entryID, ownerID).Scan(&accountID, &kind, &amountCents, &description, &categoryName)
		if err == sql.ErrNoRows {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load entry: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM entries WHERE id = ? AND owner_id = ?", entryID, ownerID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		deleted = DeletedEntry{
			ID:           entryID,
			Kind:         core.EntryKind(kind),
			Amount:       core.Money{Cents: amountCents},
			CategoryName: categoryName.String,
			Description:  description,
		}

		if accountID.Valid {
			if _, err := adjustBalance(ctx, tx, accountID.Int64, -deleted.Entry().Signed()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return DeletedEntry{}, err
	}

	slog.InfoContext(ctx, "Entry deleted", "id", entryID, "owner", ownerID)
	return deleted, nil
}

// Entry reconstructs the minimal entry view of a deletion summary.
func (d DeletedEntry) Entry() core.Entry {
	return core.Entry{ID: d.ID, Kind: d.Kind, Amount: d.Amount, Description: d.Description}
}
