package storage

import (
	"context"
	"fmt"

	"financeiro/internal/core"
)

// The get-or-create lookups rely on the schema's uniqueness constraints:
// an INSERT ... ON CONFLICT ... RETURNING id round-trip yields the same
// id no matter how many callers race on identical arguments.

func (s *Store) GetOrCreateCategory(ctx context.Context, ownerID, name string, kind core.EntryKind) (int64, error) {
	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return 0, err
	}
	return getOrCreateCategory(ctx, s.db, ownerID, name, kind)
}

func getOrCreateCategory(ctx context.Context, q querier, ownerID, name string, kind core.EntryKind) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO categories (owner_id, name, kind) VALUES (?, ?, ?)
		ON CONFLICT (owner_id, name, kind) DO UPDATE SET name = excluded.name
		RETURNING id`,
		ownerID, name, string(kind)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create category %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) GetOrCreateResponsible(ctx context.Context, ownerID, name string) (int64, error) {
	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return 0, err
	}
	return getOrCreateResponsible(ctx, s.db, ownerID, name)
}

func getOrCreateResponsible(ctx context.Context, q querier, ownerID, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO responsible_parties (owner_id, name) VALUES (?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = excluded.name
		RETURNING id`,
		ownerID, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create responsible %q: %w", name, err)
	}
	return id, nil
}

// GetOrCreatePaymentMethod resolves a payment method by name, inferring
// its kind from the name on first creation.
func (s *Store) GetOrCreatePaymentMethod(ctx context.Context, ownerID, name string) (int64, error) {
	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return 0, err
	}
	return getOrCreatePaymentMethod(ctx, s.db, ownerID, name)
}

func getOrCreatePaymentMethod(ctx context.Context, q querier, ownerID, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO payment_methods (owner_id, name, kind) VALUES (?, ?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = excluded.name
		RETURNING id`,
		ownerID, name, string(core.InferMethodKind(name))).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("get or create payment method %q: %w", name, err)
	}
	return id, nil
}

var defaultMethodNames = []string{
	"Dinheiro",
	"PIX",
	"Cartão de Crédito",
	"Cartão de Débito",
	"Transferência",
}

// SeedDefaultMethods registers the standard payment methods for an owner.
// Safe to call on every command; existing rows are left alone.
func (s *Store) SeedDefaultMethods(ctx context.Context, ownerID string) error {
	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return err
	}
	for _, name := range defaultMethodNames {
		if _, err := getOrCreatePaymentMethod(ctx, s.db, ownerID, name); err != nil {
			return fmt.Errorf("seed default methods: %w", err)
		}
	}
	return nil
}

// principalAccount resolves the owner's single account, creating it with
// a zero balance on first use.
func principalAccount(ctx context.Context, q querier, ownerID string) (core.Account, error) {
	acc := core.Account{OwnerID: ownerID, Name: core.PrincipalAccountName}
	err := q.QueryRowContext(ctx, `
		INSERT INTO accounts (owner_id, name) VALUES (?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET name = excluded.name
		RETURNING id, balance_cents`,
		ownerID, acc.Name).Scan(&acc.ID, &acc.Balance.Cents)
	if err != nil {
		return core.Account{}, fmt.Errorf("resolve principal account: %w", err)
	}
	return acc, nil
}

// PrincipalAccount is the exported variant used by read paths.
func (s *Store) PrincipalAccount(ctx context.Context, ownerID string) (core.Account, error) {
	if err := ensureOwner(ctx, s.db, ownerID, ""); err != nil {
		return core.Account{}, err
	}
	return principalAccount(ctx, s.db, ownerID)
}
