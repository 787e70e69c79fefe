package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/policy-projector/internal/domain"
)

// CSVDetailedExporter writes one row per projection year with every column at full precision.
// Unknown mortality is an empty cell.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(result *domain.ProjectionResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Age", "TermCost", "Contribution", "InflationFactor", "CumulativeContributed", "ContributionInflationAdjusted", "CumulativeContributedInflationAdjusted", "MarketGain", "CumulativeMarketGain", "BalanceIfNoFurtherContributions", "RunningBalance", "RunningBalanceInflationAdjusted", "MortalityProbability"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range result.Rows {
		row := []string{
			intToString(r.Year),
			intToString(r.Age),
			r.TermCost.String(),
			r.Contribution.String(),
			r.InflationFactor.String(),
			r.CumulativeContributed.String(),
			r.ContributionInflationAdjusted.String(),
			r.CumulativeContributedInflationAdjusted.String(),
			r.MarketGain.String(),
			r.CumulativeMarketGain.String(),
			r.BalanceIfNoFurtherContributions.String(),
			r.RunningBalance.String(),
			r.RunningBalanceInflationAdjusted.String(),
			nullableString(r.MortalityProbability),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
