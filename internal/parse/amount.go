// Package parse turns free-text ledger commands into structured intents.
//
// Parsing is deliberately shallow: a monetary grammar, a date grammar, and
// ordered keyword tables. There is no tokenization; keyword matching is a
// substring test against the whole remaining text, and table declaration
// order is the tie-break contract.
package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"financeiro/internal/core"
)

// amountPattern matches amounts like "100", "25,50" and "1.234,56".
// Both comma and dot can act as grouping or decimal separator.
var amountPattern = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?`)

// ExtractAmount finds the first monetary token in text and returns the
// parsed amount together with the text with that token removed. The last
// separator in the token is the decimal point; every earlier separator is
// a thousands separator and is dropped.
func ExtractAmount(text string) (core.Money, string, error) {
	loc := amountPattern.FindStringIndex(text)
	if loc == nil {
		return core.Money{}, text, core.ErrAmountNotFound
	}

	token := text[loc[0]:loc[1]]
	rest := strings.TrimSpace(strings.Replace(text, token, "", 1))

	d, err := decimal.NewFromString(normalizeAmount(token))
	if err != nil {
		return core.Money{}, rest, core.ErrInvalidAmount
	}
	amount := core.MoneyFromDecimal(d)
	if err := amount.Validate(); err != nil {
		return core.Money{}, rest, core.ErrInvalidAmount
	}
	return amount, rest, nil
}

func normalizeAmount(token string) string {
	last := strings.LastIndexAny(token, ".,")
	if last == -1 {
		return token
	}
	intPart := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, token[:last])
	return intPart + "." + token[last+1:]
}
