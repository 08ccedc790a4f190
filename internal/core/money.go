// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts and quantities
// from strings and formatting them for display.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a currency string to a decimal amount.
//
// It strips currency symbols and blanks. When both separators are present the
// last one is the decimal separator. Commas alone are thousands grouping when
// every group after the first has three digits, otherwise a single comma is a
// decimal comma.
//
// Examples:
//
//	ParseAmount("12.34")      -> 12.34
//	ParseAmount("12,34")      -> 12.34
//	ParseAmount("$12,345")    -> 12345
//	ParseAmount("$1,234.50")  -> 1234.50
//	ParseAmount("1.234,50")   -> 1234.50
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		switch {
		case isGrouped(s, ','):
			s = strings.ReplaceAll(s, ",", "")
		case strings.Count(s, ",") > 1:
			return decimal.Zero, ErrInvalidAmount
		default:
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(s, ".") > 1:
		if !isGrouped(s, '.') {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// isGrouped reports whether s is digits split by sep into a lead group of one
// to three digits followed by groups of exactly three.
func isGrouped(s string, sep byte) bool {
	s = strings.TrimPrefix(s, "-")
	groups := strings.Split(s, string(sep))
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for i, g := range groups {
		if i > 0 && len(g) != 3 {
			return false
		}
		for j := 0; j < len(g); j++ {
			if g[j] < '0' || g[j] > '9' {
				return false
			}
		}
	}
	return true
}

// ParseQuantity parses an integer quantity. Whole decimals such as "3.0"
// are accepted since spreadsheet exports often write integers that way.
func ParseQuantity(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, ErrInvalidQuantity
	}
	return d.IntPart(), nil
}

// FormatCurrency renders an amount rounded to units with thousands
// separators, e.g. "$12,345".
func FormatCurrency(d decimal.Decimal) string {
	r := d.Round(0)
	neg := r.IsNegative()
	s := groupThousands(r.Abs().StringFixed(0))
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// FormatCount renders an integer with thousands separators, e.g. "1,234".
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + groupThousands(strconv.FormatInt(-n, 10))
	}
	return groupThousands(strconv.FormatInt(n, 10))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
