package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryKind = "income"
	Expense EntryKind = "expense"
)

const (
	MethodCash     MethodKind = "cash"
	MethodPix      MethodKind = "pix"
	MethodCard     MethodKind = "card"
	MethodTransfer MethodKind = "transfer"
	MethodAccount  MethodKind = "account"
)

// PrincipalAccountName is the single account every owner gets on first use.
const PrincipalAccountName = "Conta Principal"

// DefaultMethodName is the payment method assumed when none is mentioned.
const DefaultMethodName = "Dinheiro"

// FallbackCategory is assigned when no category keyword matches.
const FallbackCategory = "outros"

type (
	EntryKind  string
	MethodKind string

	Account struct {
		ID      int64
		OwnerID string
		Name    string
		Balance Money
	}

	Category struct {
		ID      int64
		OwnerID string
		Name    string
		Kind    EntryKind
	}

	ResponsibleParty struct {
		ID      int64
		OwnerID string
		Name    string
	}

	PaymentMethod struct {
		ID      int64
		OwnerID string
		Name    string
		Kind    MethodKind
	}

	// Entry is one recorded income or expense transaction. Amount is always
	// positive; direction is carried by Kind. InstallmentIndex and
	// InstallmentTotal are both zero except for fixed-expense series, where
	// both are set.
	Entry struct {
		ID                 int64
		OwnerID            string
		AccountID          int64
		ResponsiblePartyID int64
		CategoryID         int64
		PaymentMethodID    int64
		Kind               EntryKind
		Amount             Money
		Description        string
		PostedAt           time.Time
		ReferenceDate      time.Time
		InstallmentIndex   int
		InstallmentTotal   int
	}

	Goal struct {
		ID       int64
		OwnerID  string
		Name     string
		Target   Money
		Current  Money
		Deadline string // YYYY-MM-DD, or verbatim user text when unparseable
	}

	SpendingLimit struct {
		ID         int64
		OwnerID    string
		CategoryID int64
		Limit      Money
		Period     string
	}

	PeriodReport struct {
		ID           int64
		OwnerID      string
		Month        int
		Year         int
		ArtifactPath string
		GeneratedAt  time.Time
	}
)

var (
	ErrAmountNotFound         = errors.New("amount not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrValueRequired          = errors.New("value required")
	ErrNameRequired           = errors.New("name required")
	ErrInvalidInstallmentCount = errors.New("installment count must be between 1 and 12")
	ErrInvalidLimitValue      = errors.New("invalid limit value")
	ErrNotFound               = errors.New("not found")
)

func (k EntryKind) Valid() bool {
	return k == Income || k == Expense
}

// Signed returns the amount with the sign implied by the entry kind.
func (e Entry) Signed() int64 {
	if e.Kind == Income {
		return e.Amount.Cents
	}
	return -e.Amount.Cents
}

func (e Entry) Validate() error {
	if !e.Kind.Valid() {
		return errors.New("invalid entry kind")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	// Installment fields come in pairs.
	if (e.InstallmentIndex == 0) != (e.InstallmentTotal == 0) {
		return errors.New("installment index and total must be set together")
	}
	if e.InstallmentTotal != 0 && (e.InstallmentIndex < 1 || e.InstallmentIndex > e.InstallmentTotal) {
		return errors.New("installment index out of range")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrNameRequired
	}
	return g.Target.Validate()
}

// Progress returns the goal completion ratio in [0,1]. A zero target
// reports zero rather than dividing by it.
func (g Goal) Progress() float64 {
	if g.Target.Cents <= 0 {
		return 0
	}
	p := float64(g.Current.Cents) / float64(g.Target.Cents)
	if p < 0 {
		return 0
	}
	return p
}

// InferMethodKind guesses the payment method kind from its name. Card
// keywords win over pix, pix over cash, cash over transfer; anything else
// is treated as a bank account.
func InferMethodKind(name string) MethodKind {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "cartão", "cartao", "credito", "crédito", "debito", "débito"):
		return MethodCard
	case strings.Contains(lower, "pix"):
		return MethodPix
	case containsAny(lower, "dinheiro", "cash"):
		return MethodCash
	case containsAny(lower, "transferencia", "transferência", "ted"):
		return MethodTransfer
	default:
		return MethodAccount
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
