package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDate converts a date string into ISO format (YYYY-MM-DD).
//
// Already-ISO input passes through unchanged. Anything else is split on
// ".", "/" or "-" and read day-first (the Turkish convention, "10.12.2025");
// two-digit years are expanded by prefixing "20". Input that does not split
// into three parts is returned as-is rather than guessed at.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if isoDatePattern.MatchString(s) {
		return s
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return s
	}

	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}

	return fmt.Sprintf("%s-%s-%s", year, month, day)
}
