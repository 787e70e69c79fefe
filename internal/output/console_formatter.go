package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/policy-projector/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	var buf bytes.Buffer
	in := result.Sections.Inputs
	s := result.Summary

	fmt.Fprintln(&buf, "POLICY PROJECTION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Age %d %s, horizon %d years\n", in.Age, in.Sex, result.Sections.TimeHorizons.Active)
	fmt.Fprintf(&buf, "Bracket: %s\n", bracketLine(result))
	fmt.Fprintf(&buf, "Monthly budget: %s  Policy size: %s\n", FormatCurrency(in.MonthlyBudget), FormatCurrency(in.PolicySize))
	fmt.Fprintf(&buf, "Final balance: %s (inflation-adjusted %s)\n", FormatCurrency(s.FinalBalance), FormatCurrency(s.FinalBalanceInflationAdjusted))
	fmt.Fprintf(&buf, "Total contributed: %s  Market gain: %s\n", FormatCurrency(s.TotalContributed), FormatCurrency(s.TotalMarketGain))
	fmt.Fprintf(&buf, "Account income: %s/year\n", FormatCurrency(s.AccountIncome))
	fmt.Fprintf(&buf, "Break-even: %s\n", breakEvenLine(s))
	for _, w := range s.Warnings {
		fmt.Fprintf(&buf, "warning: %s\n", w)
	}
	return buf.Bytes(), nil
}

func bracketLine(result *domain.ProjectionResult) string {
	b, ok := result.ActiveBracket()
	if !ok {
		return "none"
	}
	return fmt.Sprintf("%s (%s) at %s per $1,000", b.Name, b.Range, FormatNullable(b.RatePerThousand, fixed2))
}

func breakEvenLine(s domain.ProjectionSummary) string {
	if !s.BreakEvenTarget.Valid {
		return "not evaluated"
	}
	if s.BreakEven == nil {
		return fmt.Sprintf("never exceeds %s", FormatCurrency(s.BreakEvenTarget.Decimal))
	}
	return fmt.Sprintf("year %d (age %d) exceeds %s", s.BreakEven.Year, s.BreakEven.Age, FormatCurrency(s.BreakEvenTarget.Decimal))
}
