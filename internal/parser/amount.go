package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string of unknown locale into a float64.
//
// Turkish documents format amounts as "1.180,50" (dot thousands, comma
// decimal) while QR payloads produced by some integrators carry canonical
// "1180.50" or English "1,180.50". Disambiguation rules, in order:
//
//  1. No comma and at most one dot: already-canonical decimal ("15090.4").
//  2. A comma after the last dot: Turkish format, strip dots, comma becomes
//     the decimal point ("1.000,50" -> 1000.50).
//  3. Any remaining comma: English thousands separators, strip commas
//     ("1,000.50" -> 1000.50).
//  4. Otherwise: direct parse.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if !strings.Contains(s, ",") && strings.Count(s, ".") <= 1 {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, nil
		}
	}

	if i := strings.LastIndex(s, ","); i >= 0 && i > strings.LastIndex(s, ".") {
		t := strings.ReplaceAll(s, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return v, nil
	}

	if strings.Contains(s, ",") {
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return v, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// FormatAmount renders a canonical amount as a comma-decimal display string
// with two fraction digits ("1000,50"), the form item fields are shown and
// edited in. FormatAmount output round-trips through ParseAmount.
func FormatAmount(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', 2, 64), ".", ",")
}

// parseAmountPtr is the tolerant variant used during field extraction:
// unparseable input yields nil rather than an error.
func parseAmountPtr(s string) *float64 {
	v, err := ParseAmount(s)
	if err != nil {
		return nil
	}
	return &v
}
