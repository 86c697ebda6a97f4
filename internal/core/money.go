// Package core provides the finance tracker's domain types and the input
// parsing helpers front-ends use before handing data to storage.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input such as "12.50" or "12,50" to a decimal.
//
// The sign is preserved: storage does not constrain amounts, and the
// transaction type, not the sign, decides whether money came in or went out.
// Blank input and anything that is not a plain decimal number is rejected.
//
// Examples:
//   ParseAmount("12.34")  -> 12.34, nil
//   ParseAmount("12,34")  -> 12.34, nil
//   ParseAmount("-5")     -> -5, nil
//   ParseAmount("1e3")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatDollars renders an amount the way reports and the PDF export show it.
func FormatDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
