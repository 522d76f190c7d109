// Package core provides the domain model of the tracker: money, records,
// settings, currency formatting and progress calculation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount in the configured display currency.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{Decimal: decimal.Zero}

// NewMoney builds Money from a float literal (seed data, tests).
func NewMoney(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// MustMoney parses s and panics on failure. Only use with constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Input bounds for ParseMoney. Amounts are entered by hand, so anything
// outside them is a typo or an attempt to make rounding expensive.
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 6
)

// ParseMoney converts user input to Money.
//
// It accepts plain decimal notation with either a dot (12.34) or a comma
// (12,34) as the decimal separator and a leading sign. A lone comma
// followed by exactly three digits ("1,234") reads as a thousands
// separator as often as a decimal one and is rejected. Exponent forms
// and amounts beyond MaxIntegerDigits or MaxFractionDigits are rejected.
// The sign is kept: range checks belong to the record that owns the
// amount.
//
// Examples:
//
//	ParseMoney("1200")    -> 1200
//	ParseMoney("12,5")    -> 12.5
//	ParseMoney(" -3.10 ") -> -3.1
//	ParseMoney("1,234")   -> ErrInvalidAmount
//	ParseMoney("1e9")     -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	intPart, fracPart, hasSep := s, "", false
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		if s[i] == ',' && len(s)-i-1 == 3 {
			return Zero, ErrInvalidAmount
		}
		intPart, fracPart, hasSep = s[:i], s[i+1:], true
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Zero, ErrInvalidAmount
	}
	if intPart == "" && fracPart == "" {
		return Zero, ErrInvalidAmount
	}
	if hasSep && fracPart == "" {
		return Zero, ErrInvalidAmount
	}
	if len(strings.TrimLeft(intPart, "0")) > MaxIntegerDigits || len(fracPart) > MaxFractionDigits {
		return Zero, ErrInvalidAmount
	}

	if intPart == "" {
		intPart = "0"
	}
	normalized := sign + intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Cmp compares two amounts.
func (m Money) Cmp(o Money) int {
	return m.Decimal.Cmp(o.Decimal)
}

// Float returns the amount as a float64 for chart series.
func (m Money) Float() float64 {
	return m.InexactFloat64()
}

// String renders the plain decimal with two places, no symbol.
func (m Money) String() string {
	return m.StringFixed(2)
}
