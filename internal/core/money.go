// Package core provides the transaction domain type, amount parsing and
// summary aggregation.
//
// This file contains parsing of user-typed amounts and currency formatting.
package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericPrefix matches the longest leading decimal literal of a string.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseAmount parses a signed amount the way a browser's parseFloat does:
// leading whitespace is skipped and the longest numeric prefix is used, so
// "12abc" yields 12 while "abc" fails.
//
// Examples:
//
//	ParseAmount("1500")    -> 1500, nil
//	ParseAmount(" -800.5") -> -800.5, nil
//	ParseAmount("12abc")   -> 12, nil
//	ParseAmount("1e3x")    -> 1000, nil
//	ParseAmount("abc")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	lit := numericPrefix.FindString(s)
	if lit == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatMoney renders d with two decimals and a dollar prefix, placing the
// sign before the symbol ("-$800.00").
func FormatMoney(d decimal.Decimal) string {
	r := d.Round(2)
	if r.Sign() < 0 {
		return "-$" + r.Abs().StringFixed(2)
	}
	return "$" + r.StringFixed(2)
}

// FormatAmount is FormatMoney for a raw transaction amount.
func FormatAmount(amount float64) string {
	return FormatMoney(decimal.NewFromFloat(amount))
}
