package decimal

import (
	"testing"

	stddec "github.com/shopspring/decimal"
)

func money(s string) Money {
	return NewMoneyFromDecimal(stddec.RequireFromString(s))
}

func TestNewMoneyFromDecimal(t *testing.T) {
	d := stddec.NewFromFloat(10.125)
	m := NewMoneyFromDecimal(d)
	if !m.Decimal.Equal(d) {
		t.Fatalf("NewMoneyFromDecimal mismatch: got %s want %s", m.Decimal, d)
	}
	if m.String() != "10.13" {
		t.Fatalf("display mismatch: got %s", m.String())
	}
}

func TestAnnual(t *testing.T) {
	cases := []struct{ in, out string }{
		{"200", "2400"},
		{"25", "300"},
		{"0", "0"},
		{"10.125", "121.5"},
	}
	for _, c := range cases {
		got := money(c.in).Annual().Decimal
		if !got.Equal(stddec.RequireFromString(c.out)) {
			t.Fatalf("Annual(%s) got %s want %s", c.in, got, c.out)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct{ in, out string }{
		{"0", "$0.00"},
		{"5.5", "$5.50"},
		{"999.999", "$1,000.00"},
		{"1234.5", "$1,234.50"},
		{"123456", "$123,456.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-5049.6", "-$5,049.60"},
		{"-0.001", "$0.00"},
	}
	for _, c := range cases {
		if got := money(c.in).Format(); got != c.out {
			t.Fatalf("Format(%s) got %s want %s", c.in, got, c.out)
		}
	}
}

func TestCompact(t *testing.T) {
	cases := []struct{ in, out string }{
		{"950", "$950.00"},
		{"250000", "$250.0K"},
		{"1250000", "$1.25M"},
		{"-2500", "-$2.5K"},
	}
	for _, c := range cases {
		if got := money(c.in).Compact(); got != c.out {
			t.Fatalf("Compact(%s) got %s want %s", c.in, got, c.out)
		}
	}
}
