package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	twelve   = decimal.NewFromInt(12)
	thousand = decimal.NewFromInt(1000)
	million  = decimal.NewFromInt(1000000)
)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Annual converts a monthly amount to annual
func (m Money) Annual() Money {
	return Money{m.Decimal.Mul(twelve)}
}

// String returns the amount with two decimals and no grouping.
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

// Format renders the amount as US currency with thousands separators, e.g. -$1,234.50.
func (m Money) Format() string {
	rounded := m.Decimal.Round(2)
	s := rounded.Abs().StringFixed(2)
	whole, cents := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(cents)
	return b.String()
}

// Compact renders large amounts with a K or M suffix for narrow columns.
func (m Money) Compact() string {
	abs := m.Decimal.Abs()
	sign := ""
	if m.Decimal.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(million):
		return sign + "$" + abs.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return sign + "$" + abs.Div(thousand).StringFixed(1) + "K"
	default:
		return m.Format()
	}
}
