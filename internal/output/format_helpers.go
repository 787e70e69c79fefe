package output

import (
	"strconv"

	money "github.com/rpgo/policy-projector/pkg/decimal"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// FormatCurrency formats a decimal as USD currency with thousands separators and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).Format() }

// FormatCompactCurrency abbreviates large amounts ($1.25M).
func FormatCompactCurrency(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Compact()
}

// FormatPercentage formats a decimal that is already in percent units with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatRate formats a fractional rate (0.0328) as a percentage (3.28%).
func FormatRate(rate decimal.Decimal) string { return FormatPercentage(rate.Mul(decimalHundred)) }

// FormatNullable renders an unknown value as "n/a".
func FormatNullable(v decimal.NullDecimal, f func(decimal.Decimal) string) string {
	if !v.Valid {
		return "n/a"
	}
	return f(v.Decimal)
}

// FormatProbability renders a probability fraction as a percentage with 4 decimals.
func FormatProbability(p decimal.Decimal) string { return p.Mul(decimalHundred).StringFixed(4) + "%" }

func fixed2(d decimal.Decimal) string { return d.StringFixed(2) }

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }

func nullableString(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
