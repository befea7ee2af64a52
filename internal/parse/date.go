package parse

import (
	"regexp"
	"strings"
	"time"
)

var datePattern = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)

// dateFormats is tried in order; the first layout that parses wins.
var dateFormats = []string{"02-01-06", "02/01/06", "02-01-2006", "02/01/2006"}

// ExtractDate finds the first date-like token in text. When one of the
// known day-month-year formats parses, the date is normalized to
// YYYY-MM-DD; otherwise the matched token is returned verbatim, and the
// caller must treat it as opaque. The third return reports whether any
// token was found at all.
func ExtractDate(text string) (string, string, bool) {
	loc := datePattern.FindStringIndex(text)
	if loc == nil {
		return "", text, false
	}

	token := text[loc[0]:loc[1]]
	rest := strings.TrimSpace(strings.Replace(text, token, "", 1))
	return NormalizeDate(token), rest, true
}

// NormalizeDate converts a day-month-year string to ISO form, or returns
// the input unchanged when no known format matches.
func NormalizeDate(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '/' {
			return r
		}
		return -1
	}, raw)

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}
