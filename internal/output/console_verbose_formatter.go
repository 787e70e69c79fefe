package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rpgo/policy-projector/internal/domain"
)

// ConsoleVerboseFormatter renders the full report: assumptions, rate table, every projection
// year and the summary.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(result *domain.ProjectionResult) ([]byte, error) {
	var buf bytes.Buffer
	rule := strings.Repeat("=", 110)

	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf, "WHOLE LIFE POLICY PROJECTION")
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range GenerateAssumptions(result) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	writeRateTable(&buf, result)
	writeInsurance(&buf, result)
	writeRows(&buf, result.Rows)
	writeSummary(&buf, result)
	return buf.Bytes(), nil
}

func writeRateTable(w io.Writer, result *domain.ProjectionResult) {
	rt := result.Tables.RateTable
	fmt.Fprintf(w, "RATE BRACKETS (age %d, %s)\n", rt.Age, rt.Sex)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	if len(rt.Brackets) == 0 {
		fmt.Fprintln(w, "  no rate table entry")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "  %-10s %-22s %10s %14s\n", "Bracket", "Coverage", "Rate/1000", "Max Monthly")
	for i, b := range rt.Brackets {
		marker := " "
		if rt.ActiveBracketIndex != nil && *rt.ActiveBracketIndex == i {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-10s %-22s %10s %14s\n", marker, b.Name, b.Range,
			FormatNullable(b.RatePerThousand, fixed2),
			FormatNullable(b.MonthlyCutoff, FormatCurrency))
	}
	fmt.Fprintln(w)
}

func writeInsurance(w io.Writer, result *domain.ProjectionResult) {
	ins := result.Sections.Insurance
	in := result.Sections.Inputs
	fmt.Fprintln(w, "INSURANCE")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "  Monthly budget:          %s\n", FormatCurrency(in.MonthlyBudget))
	fmt.Fprintf(w, "  Policy size:             %s\n", FormatCurrency(in.PolicySize))
	fmt.Fprintf(w, "  Whole life annual cost:  %s\n", FormatCurrency(ins.WholeLifeAnnualCost))
	fmt.Fprintf(w, "  Term annual cost:        %s\n", FormatCurrency(ins.TermAnnualCost))
	fmt.Fprintf(w, "  Mortality over horizon:  %s\n", FormatNullable(ins.MortalityLikelihood, FormatProbability))
	fmt.Fprintln(w)
}

func writeRows(w io.Writer, rows []domain.ProjectionRow) {
	fmt.Fprintln(w, "YEAR-BY-YEAR PROJECTION")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	fmt.Fprintf(w, "%4s %4s %12s %12s %14s %16s %16s %16s %10s\n",
		"Year", "Age", "Term Cost", "Contrib", "Market Gain", "Balance", "Real Balance", "If Stopped", "Mortality")
	for _, r := range rows {
		fmt.Fprintf(w, "%4d %4d %12s %12s %14s %16s %16s %16s %10s\n",
			r.Year, r.Age,
			FormatCurrency(r.TermCost),
			FormatCurrency(r.Contribution),
			FormatCurrency(r.MarketGain),
			FormatCurrency(r.RunningBalance),
			FormatCurrency(r.RunningBalanceInflationAdjusted),
			FormatCurrency(r.BalanceIfNoFurtherContributions),
			FormatNullable(r.MortalityProbability, FormatProbability))
	}
	fmt.Fprintln(w)
}

func writeSummary(w io.Writer, result *domain.ProjectionResult) {
	s := result.Summary
	h := AnalyzeProjection(result)

	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "  Final balance:                 %s\n", FormatCurrency(s.FinalBalance))
	fmt.Fprintf(w, "  Final balance (today's $):     %s\n", FormatCurrency(s.FinalBalanceInflationAdjusted))
	fmt.Fprintf(w, "  Total contributed:             %s\n", FormatCurrency(s.TotalContributed))
	fmt.Fprintf(w, "  Total contributed (today's $): %s\n", FormatCurrency(s.TotalContributedInflationAdjusted))
	fmt.Fprintf(w, "  Total market gain:             %s\n", FormatCurrency(s.TotalMarketGain))
	fmt.Fprintf(w, "  Total term cost:               %s\n", FormatCurrency(s.TotalTermCost))
	fmt.Fprintf(w, "  Final year growth:             %s\n", FormatCurrency(s.FinalYearGrowth))
	fmt.Fprintf(w, "  Account income:                %s/year\n", FormatCurrency(s.AccountIncome))
	if h.GrowthMultiple.IsPositive() {
		fmt.Fprintf(w, "  Growth multiple:               %sx\n", h.GrowthMultiple.StringFixed(2))
	}
	if h.AtRetirement != nil {
		fmt.Fprintf(w, "  Balance at retirement (%d):    %s\n", h.AtRetirement.Age, FormatCurrency(h.AtRetirement.RunningBalance))
	}
	fmt.Fprintf(w, "  Break-even:                    %s\n", breakEvenLine(s))

	if eg := h.EndingGrowth; eg != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "ENDING GROWTH (year %d, no further contributions)\n", eg.CutoffYear)
		fmt.Fprintf(w, "  Last day: %s  week: %s  month: %s  year: %s\n",
			FormatCurrency(eg.Day), FormatCurrency(eg.Week), FormatCurrency(eg.Month), FormatCurrency(eg.Year))
		years := make([]int, 0, len(eg.Trailing))
		for y := range eg.Trailing {
			years = append(years, y)
		}
		sort.Ints(years)
		for _, y := range years {
			fmt.Fprintf(w, "  Last %d years: %s\n", y, FormatCurrency(eg.Trailing[y]))
		}
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WARNINGS")
		for _, warn := range s.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
}
