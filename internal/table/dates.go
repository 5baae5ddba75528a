package table

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// maxLeadingTokens bounds how many leading words ParseDateFuzzy will strip
// while hunting for a date inside free text.
const maxLeadingTokens = 12

// ParseDateFuzzy extracts a calendar date from a free-form string, e.g.
// "effective 04/15/2024" or "April 5, 2024". Time-of-day is discarded.
// ok is false for blank, null-ish, or unparseable input; callers treat that
// as the null sentinel.
func ParseDateFuzzy(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
		return time.Time{}, false
	}

	fields := strings.Fields(s)
	if len(fields) > maxLeadingTokens {
		fields = fields[:maxLeadingTokens]
	}

	// Try the full string, then progressively drop leading tokens so prose
	// prefixes ("due on ...") don't defeat the parser.
	for i := range fields {
		candidate := strings.Join(fields[i:], " ")
		if t, err := dateparse.ParseAny(candidate); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
