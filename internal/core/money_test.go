package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.34", "12.34"},
		{"12,34", "12.34"},
		{"$1,234.50", "1234.5"},
		{"1.234,50", "1234.5"},
		{" 1500 ", "1500"},
		{"-250.5", "-250.5"},
		{"$12,345", "12345"},
		{"12,345", "12345"},
		{"1,234,567", "1234567"},
		{"1.234.567", "1234567"},
		{"-$4,200", "-4200"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q) err: %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "abc", "1,2,3", "$", "1.2.3", "12,3456,789"} {
		if _, err := ParseAmount(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q) err=%v, want ErrInvalidAmount", bad, err)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	for in, want := range map[string]int64{"3": 3, " 12 ": 12, "4.0": 4, "-1": -1} {
		got, err := ParseQuantity(in)
		if err != nil || got != want {
			t.Errorf("ParseQuantity(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "2.5", "x"} {
		if _, err := ParseQuantity(bad); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("ParseQuantity(%q) err=%v, want ErrInvalidQuantity", bad, err)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := map[string]string{
		"0":         "$0",
		"999.4":     "$999",
		"999.5":     "$1,000",
		"1234567.8": "$1,234,568",
		"-4200":     "-$4,200",
	}
	for in, want := range tests {
		if got := FormatCurrency(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAmountReadsFormattedCurrency(t *testing.T) {
	for _, in := range []string{"0", "950", "12345", "1234567", "-4200"} {
		want := decimal.RequireFromString(in)
		got, err := ParseAmount(FormatCurrency(want))
		if err != nil {
			t.Fatalf("ParseAmount(%q) err: %v", FormatCurrency(want), err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseAmount(%q) = %s, want %s", FormatCurrency(want), got, want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int64]string{0: "0", 12: "12", 1234: "1,234", 1000000: "1,000,000", -5300: "-5,300"}
	for in, want := range tests {
		if got := FormatCount(in); got != want {
			t.Errorf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}
