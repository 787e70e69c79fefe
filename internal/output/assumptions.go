package output

import (
	"fmt"

	"github.com/rpgo/policy-projector/internal/domain"
)

// GenerateAssumptions lists the modeling assumptions a result was computed with.
func GenerateAssumptions(result *domain.ProjectionResult) []string {
	g := result.Sections.Globals
	in := result.Sections.Inputs
	h := result.Sections.TimeHorizons

	market := fmt.Sprintf("Market growth: %s annually", FormatRate(g.MarketGainRate))
	if g.PerformancePercentile != nil {
		market += fmt.Sprintf(" (historical %.0fth percentile)", *g.PerformancePercentile)
	}

	horizon := fmt.Sprintf("Projection horizon: %d years (to life expectancy)", h.Active)
	if h.Custom != nil {
		horizon = fmt.Sprintf("Projection horizon: %d years (custom)", h.Active)
	}

	lines := []string{
		fmt.Sprintf("Inflation: %s annually (purchasing power x%s per year)", FormatRate(g.InflationRate), g.InflationDiscount.StringFixed(4)),
		market,
		fmt.Sprintf("Retirement age: %d; life expectancy: %d", g.RetirementAge, g.LifeExpectancy),
		horizon,
	}
	if in.TermPolicyLength > 0 {
		lines = append(lines, fmt.Sprintf("Term policy: %d years at %s/month for %s coverage",
			in.TermPolicyLength, FormatCurrency(in.TermBudget), FormatCurrency(in.TermPolicySize)))
	}
	if g.TobaccoUser {
		lines = append(lines, "Tobacco user")
	}
	return lines
}
