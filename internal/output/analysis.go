package output

import (
	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// endingGrowthLookbacks are the trailing windows reported alongside the final-year growth.
var endingGrowthLookbacks = []int{5, 10, 20}

// Highlights collects the figures the summary outputs call out.
type Highlights struct {
	Final        domain.ProjectionRow
	AtRetirement *domain.ProjectionRow
	BreakEven    *domain.BreakEvenPoint

	// GainOverContributions is the final balance less everything contributed.
	GainOverContributions decimal.Decimal
	// GrowthMultiple is final balance / total contributed; zero when nothing was contributed.
	GrowthMultiple decimal.Decimal

	EndingGrowth *calculation.EndingGrowth
}

// AnalyzeProjection extracts the highlights of a projection.
// Extracted from the formatters for testability.
func AnalyzeProjection(result *domain.ProjectionResult) Highlights {
	h := Highlights{
		Final:     result.LastRow(),
		BreakEven: result.Summary.BreakEven,
	}
	for i := range result.Rows {
		if result.Rows[i].Age == result.Sections.Globals.RetirementAge {
			row := result.Rows[i]
			h.AtRetirement = &row
			break
		}
	}

	s := result.Summary
	h.GainOverContributions = s.FinalBalance.Sub(s.TotalContributed)
	if s.TotalContributed.IsPositive() {
		h.GrowthMultiple = s.FinalBalance.Div(s.TotalContributed).Round(2)
	}

	if len(result.Rows) > 1 {
		eg, err := calculation.CalculateEndingGrowth(result.Rows, len(result.Rows)-1,
			result.Sections.Globals.MarketMultiplier, endingGrowthLookbacks...)
		if err == nil {
			h.EndingGrowth = eg
		}
	}
	return h
}
