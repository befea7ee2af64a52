package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"financeiro/internal/amqp"
	"financeiro/internal/core"
	"financeiro/internal/parse"
	"financeiro/internal/storage"
)

// LedgerService orchestrates ledger operations across SQLite and AMQP.
// The AMQP client may be nil; event publishing is best effort and never
// fails the local operation.
type LedgerService struct {
	store      *storage.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store *storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// CommandResult is the outcome of one interpreted free-text command.
// Exactly one of Entry and Goal is set.
type CommandResult struct {
	Entry    *storage.AppliedEntry
	Goal     *core.Goal
	Exceeded []storage.ExceededLimit
}

// InterpretCommand parses a free-text command and applies it for the
// given owner. "/meta ..." registers a goal, everything else posts an
// entry under the caller's name.
func (s *LedgerService) InterpretCommand(ctx context.Context, ownerID, callerName, text string) (CommandResult, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "/meta") {
		goal, err := s.RecordGoal(ctx, ownerID, text)
		if err != nil {
			return CommandResult{}, err
		}
		return CommandResult{Goal: goal}, nil
	}

	applied, exceeded, err := s.RecordEntry(ctx, ownerID, callerName, text)
	if err != nil {
		return CommandResult{}, err
	}
	return CommandResult{Entry: applied, Exceeded: exceeded}, nil
}

// RecordEntry parses an add-entry command, posts the entry and reports
// the owner's exceeded spending limits for the entry's month.
func (s *LedgerService) RecordEntry(ctx context.Context, ownerID, callerName, text string) (*storage.AppliedEntry, []storage.ExceededLimit, error) {
	intent, err := parse.ParseEntryCommand(text)
	if err != nil {
		return nil, nil, fmt.Errorf("parse entry command: %w", err)
	}

	applied, err := s.store.ApplyEntry(ctx, ownerID, storage.EntryInput{
		Kind:            intent.Kind,
		Amount:          intent.Amount,
		Category:        intent.Category,
		MethodName:      intent.MethodName,
		ResponsibleName: callerName,
		Description:     intent.Description,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("apply entry: %w", err)
	}

	if err := s.publishEntryRecorded(ctx, applied.Entry); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry recorded message",
			"entry_id", applied.Entry.ID, "error", err)
		// Don't fail the request - entry is saved locally
	}

	exceeded, err := s.store.ExceededLimits(ctx, ownerID, core.PeriodOf(applied.Entry.ReferenceDate))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to check spending limits",
			"owner_id", ownerID, "error", err)
		return &applied, nil, nil
	}

	return &applied, exceeded, nil
}

// RecordGoal parses an add-goal command and registers the goal.
func (s *LedgerService) RecordGoal(ctx context.Context, ownerID, text string) (*core.Goal, error) {
	intent, err := parse.ParseGoalCommand(text)
	if err != nil {
		return nil, fmt.Errorf("parse goal command: %w", err)
	}

	goal, err := s.store.AddGoal(ctx, ownerID, core.Goal{
		Name:     intent.Name,
		Target:   intent.Target,
		Deadline: intent.Deadline,
	})
	if err != nil {
		return nil, fmt.Errorf("add goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal registered",
		"owner_id", ownerID,
		"goal_id", goal.ID,
		"name", goal.Name,
		"target", goal.Target.String())

	return &goal, nil
}

// DeleteEntry removes an entry by id and reconciles the account balance.
func (s *LedgerService) DeleteEntry(ctx context.Context, ownerID string, entryID int64) (storage.DeletedEntry, error) {
	deleted, err := s.store.DeleteEntry(ctx, entryID, ownerID)
	if err != nil {
		return storage.DeletedEntry{}, fmt.Errorf("delete entry: %w", err)
	}
	return deleted, nil
}

// SetLimit sets or replaces a monthly spending limit for a category.
func (s *LedgerService) SetLimit(ctx context.Context, ownerID, category string, limit core.Money) (core.SpendingLimit, error) {
	lim, err := s.store.UpsertLimit(ctx, ownerID, category, limit)
	if err != nil {
		return core.SpendingLimit{}, fmt.Errorf("set limit: %w", err)
	}
	return lim, nil
}

// GenerateFixed schedules a fixed expense over the next N months,
// starting from now.
func (s *LedgerService) GenerateFixed(ctx context.Context, ownerID, category string, amount core.Money, months int, now time.Time) ([]core.Entry, error) {
	entries, err := s.store.GenerateFixed(ctx, ownerID, category, amount, months, now)
	if err != nil {
		return nil, fmt.Errorf("generate fixed entries: %w", err)
	}
	return entries, nil
}

// MonthSummary is the owner's view of one period: totals, per-category
// expenses and the current principal balance.
type MonthSummary struct {
	Period     core.Period
	Totals     storage.PeriodTotals
	Categories []storage.CategoryTotal
	Balance    core.Money
}

// Summarize builds the month summary for one owner and period.
func (s *LedgerService) Summarize(ctx context.Context, ownerID string, p core.Period) (MonthSummary, error) {
	totals, err := s.store.PeriodTotalsFor(ctx, ownerID, p)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("period totals: %w", err)
	}
	categories, err := s.store.CategoryTotalsFor(ctx, ownerID, p)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("category totals: %w", err)
	}
	account, err := s.store.PrincipalAccount(ctx, ownerID)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("principal account: %w", err)
	}
	return MonthSummary{
		Period:     p,
		Totals:     totals,
		Categories: categories,
		Balance:    account.Balance,
	}, nil
}

// Goals lists the owner's goals, newest first.
func (s *LedgerService) Goals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// SharedBalance sums the principal balances of every owner.
func (s *LedgerService) SharedBalance(ctx context.Context) (core.Money, error) {
	balance, err := s.store.SharedBalance(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("shared balance: %w", err)
	}
	return balance, nil
}

// Reset wipes everything recorded for one owner.
func (s *LedgerService) Reset(ctx context.Context, ownerID string) error {
	if err := s.store.ResetOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("reset owner: %w", err)
	}
	slog.InfoContext(ctx, "Owner data reset", "owner_id", ownerID)
	return nil
}

func (s *LedgerService) publishEntryRecorded(ctx context.Context, e core.Entry) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping entry recorded message")
		return nil
	}
	return s.amqpClient.PublishEntryRecorded(ctx, e.ID, e.OwnerID, string(e.Kind))
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
