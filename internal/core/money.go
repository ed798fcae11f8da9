// Package core holds the transaction domain model and the pure
// filter/aggregate/sort operations the dashboard is built on.
//
// This file contains money parsing and formatting. Amounts are stored as
// signed cents; floats appear only at the presentation edge (percentages,
// averages).
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a signed amount in cents. Positive is income, negative is expense.
type Money struct {
	Cents int64 `json:"cents"`
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsIncome reports a strictly positive amount. Zero is neither income nor
// expense.
func (m Money) IsIncome() bool { return m.Cents > 0 }

// IsExpense reports a strictly negative amount.
func (m Money) IsExpense() bool { return m.Cents < 0 }

// Rand returns the Rand value as a float64 for display purposes only.
func (m Money) Rand() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a Rand currency string, e.g. "R1234.50" or
// "-R12.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR%d.%02d", sign, cents/100, cents%100)
}

// ParseAmountToCents converts a signed decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted.
//
// Examples:
//
//	ParseAmountToCents("12.34")   -> 1234
//	ParseAmountToCents("-12,34")  -> -1234
//	ParseAmountToCents("1.005")   -> 101 (rounds up)
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, nil
}
