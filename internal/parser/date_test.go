package parser

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10.12.2025", "2025-12-10"},
		{"2025-12-10", "2025-12-10"},
		{"10/12/25", "2025-12-10"},
		{"1.2.2025", "2025-02-01"},
		{"01-02-2025", "2025-02-01"},
		{"31/12/2024", "2024-12-31"},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.input); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeDatePassthrough(t *testing.T) {
	// Input that does not split into three parts is returned unchanged.
	for _, input := range []string{"", "2025", "notadate", "10.12"} {
		if got := NormalizeDate(input); got != input {
			t.Errorf("NormalizeDate(%q) = %q, want input unchanged", input, got)
		}
	}
}
