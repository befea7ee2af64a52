package parse

import (
	"errors"
	"strings"

	"financeiro/internal/core"
)

// EntryIntent is the structured outcome of parsing an add-entry command.
// The responsible party is intentionally absent: it always comes from the
// caller identity, never from the text.
type EntryIntent struct {
	Kind        core.EntryKind
	Amount      core.Money
	Category    string
	MethodName  string
	Description string
}

// GoalIntent is the structured outcome of parsing an add-goal command.
type GoalIntent struct {
	Name     string
	Target   core.Money
	Deadline string // empty when the text carries no date
}

// ParseEntryCommand interprets an add-entry command such as
// "/add alimentação despesa 25,50 almoço no mercado". It is side-effect
// free; translating the intent into stored entities is the store's job.
func ParseEntryCommand(text string) (EntryIntent, error) {
	text = stripCommand(text, "/add")

	// An absent and a non-positive amount are the same user mistake: the
	// command carries no usable value.
	amount, rest, err := ExtractAmount(text)
	if err != nil {
		if errors.Is(err, core.ErrAmountNotFound) || errors.Is(err, core.ErrInvalidAmount) {
			return EntryIntent{}, core.ErrValueRequired
		}
		return EntryIntent{}, err
	}

	lower := strings.ToLower(rest)
	kind, kindKeyword := classifyKind(lower)

	return EntryIntent{
		Kind:        kind,
		Amount:      amount,
		Category:    classifyCategory(lower),
		MethodName:  classifyMethod(lower),
		Description: descriptionFrom(rest, kindKeyword),
	}, nil
}

// ParseGoalCommand interprets an add-goal command such as
// "/meta Viagem de Casamento 20000 30-03-26".
func ParseGoalCommand(text string) (GoalIntent, error) {
	text = stripCommand(text, "/meta")

	target, rest, err := ExtractAmount(text)
	if err != nil {
		if errors.Is(err, core.ErrAmountNotFound) || errors.Is(err, core.ErrInvalidAmount) {
			return GoalIntent{}, core.ErrValueRequired
		}
		return GoalIntent{}, err
	}

	deadline, rest, found := ExtractDate(rest)
	if !found {
		deadline = ""
	}

	name := strings.Join(strings.Fields(rest), " ")
	if name == "" {
		return GoalIntent{}, core.ErrNameRequired
	}

	return GoalIntent{Name: name, Target: target, Deadline: deadline}, nil
}

func stripCommand(text, command string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, command) {
		text = text[len(command):]
	}
	return strings.TrimSpace(text)
}

// descriptionFrom removes the keyword that decided the transaction kind
// and collapses whitespace; whatever remains is the description. An empty
// description is valid.
func descriptionFrom(rest, kindKeyword string) string {
	if kindKeyword != "" {
		if idx := strings.Index(strings.ToLower(rest), kindKeyword); idx != -1 {
			rest = rest[:idx] + rest[idx+len(kindKeyword):]
		}
	}
	return strings.Join(strings.Fields(rest), " ")
}
