package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseValue parses a signed decimal amount from user input. Both "12.50"
// and "12,50" are accepted; whitespace is trimmed.
func ParseValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount cannot be empty", ErrValidation)
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return d, nil
}

// FormatValue renders an amount with two fractional digits.
func FormatValue(d decimal.Decimal) string {
	return d.StringFixed(2)
}
