package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/policy-projector/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per projection).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(result *domain.ProjectionResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"RunID", "Age", "Sex", "Horizon", "Bracket", "MonthlyBudget", "PolicySize", "FinalBalance", "FinalBalanceInflationAdjusted", "TotalContributed", "TotalMarketGain", "TotalTermCost", "AccountIncome", "BreakEvenYear", "BreakEvenAge", "DegenerateHorizon"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	in := result.Sections.Inputs
	s := result.Summary
	bracket := ""
	if b, ok := result.ActiveBracket(); ok {
		bracket = b.Name
	}
	beYear, beAge := "", ""
	if s.BreakEven != nil {
		beYear, beAge = intToString(s.BreakEven.Year), intToString(s.BreakEven.Age)
	}
	row := []string{
		result.Metadata.RunID,
		intToString(in.Age),
		string(in.Sex),
		intToString(result.Sections.TimeHorizons.Active),
		bracket,
		in.MonthlyBudget.StringFixed(2),
		in.PolicySize.StringFixed(2),
		s.FinalBalance.StringFixed(2),
		s.FinalBalanceInflationAdjusted.StringFixed(2),
		s.TotalContributed.StringFixed(2),
		s.TotalMarketGain.StringFixed(2),
		s.TotalTermCost.StringFixed(2),
		s.AccountIncome.StringFixed(2),
		beYear,
		beAge,
		boolToString(s.DegenerateHorizon),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
