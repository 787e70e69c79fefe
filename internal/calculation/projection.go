package calculation

import (
	"github.com/rpgo/policy-projector/internal/domain"
	money "github.com/rpgo/policy-projector/pkg/decimal"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Fixed scales keep row values bounded: compounding exact decimals would add digits every year.
const (
	// FactorScale is the number of decimal places kept for the inflation discount and factors.
	FactorScale = 16
	// AmountScale is the number of decimal places kept for market gains.
	AmountScale = 10
)

// ProjectionParams are the resolved inputs of the yearly recurrence.
type ProjectionParams struct {
	Age     int
	Sex     domain.Sex
	Horizon int

	MonthlyBudget    decimal.Decimal
	TermBudget       decimal.Decimal
	TermPolicyLength int

	InflationRate  decimal.Decimal
	MarketGainRate decimal.Decimal

	Mortality domain.MortalityTable
}

// InflationDiscount returns the per-year purchasing-power decay factor 1 − i/(1+i), rounded to
// FactorScale places.
func InflationDiscount(inflationRate decimal.Decimal) decimal.Decimal {
	return one.Sub(inflationRate.Div(one.Add(inflationRate))).Round(FactorScale)
}

// InflationFactor returns discount^year rounded to FactorScale places.
func InflationFactor(discount decimal.Decimal, year int) decimal.Decimal {
	return discount.Pow(decimal.NewFromInt(int64(year))).Round(FactorScale)
}

// ProjectRows runs the yearly account recurrence for years 0..Horizon. A negative horizon
// yields the single year-0 row. Each row depends only on the previous row and the params.
// Inflation-adjusted values are exact products with the row's stored InflationFactor.
func ProjectRows(p ProjectionParams) []domain.ProjectionRow {
	horizon := p.Horizon
	if horizon < 0 {
		horizon = 0
	}

	discount := InflationDiscount(p.InflationRate)
	annualContribution := money.NewMoneyFromDecimal(p.MonthlyBudget).Annual().Decimal
	annualTermCost := money.NewMoneyFromDecimal(p.TermBudget).Annual().Decimal

	rows := make([]domain.ProjectionRow, 0, horizon+1)
	for year := 0; year <= horizon; year++ {
		termCost := decimal.Zero
		if year < p.TermPolicyLength {
			termCost = annualTermCost
		}
		contribution := annualContribution.Sub(termCost)
		inflationFactor := InflationFactor(discount, year)

		row := domain.ProjectionRow{
			Year:            year,
			Age:             p.Age + year,
			TermCost:        termCost,
			Contribution:    contribution,
			InflationFactor: inflationFactor,
		}

		if year == 0 {
			row.CumulativeContributed = contribution
			row.ContributionInflationAdjusted = contribution
			row.CumulativeContributedInflationAdjusted = contribution
			row.MarketGain = decimal.Zero
			row.CumulativeMarketGain = decimal.Zero
			row.BalanceIfNoFurtherContributions = contribution
			row.RunningBalance = contribution
			row.RunningBalanceInflationAdjusted = contribution
			rows = append(rows, row)
			continue
		}

		prev := rows[year-1]
		gain := prev.RunningBalance.Mul(p.MarketGainRate).Round(AmountScale)
		adjusted := contribution.Mul(inflationFactor)

		row.MarketGain = gain
		row.CumulativeMarketGain = prev.CumulativeMarketGain.Add(gain)
		row.BalanceIfNoFurtherContributions = prev.RunningBalance.Add(gain)
		row.RunningBalance = prev.RunningBalance.Add(gain).Add(contribution)
		row.RunningBalanceInflationAdjusted = row.RunningBalance.Mul(inflationFactor)
		row.CumulativeContributed = prev.CumulativeContributed.Add(contribution)
		row.ContributionInflationAdjusted = adjusted
		row.CumulativeContributedInflationAdjusted = prev.CumulativeContributedInflationAdjusted.Add(adjusted)
		// Keyed by years ahead of the starting age, not the attained age.
		row.MortalityProbability = ProbabilityOfDeath(p.Mortality, p.Sex, p.Age, year)

		rows = append(rows, row)
	}
	return rows
}

// Summarize derives the scalar aggregates from a completed row sequence. target, when valid,
// is the death benefit used for break-even detection.
func Summarize(rows []domain.ProjectionRow, marketGainRate decimal.Decimal, target decimal.NullDecimal) domain.ProjectionSummary {
	var s domain.ProjectionSummary
	if len(rows) == 0 {
		return s
	}
	last := rows[len(rows)-1]

	s.FinalBalance = last.RunningBalance
	s.FinalBalanceInflationAdjusted = last.RunningBalanceInflationAdjusted
	s.AccountIncome = last.RunningBalance.Mul(marketGainRate).Round(AmountScale)
	s.FinalYearGrowth = last.MarketGain
	s.TotalContributed = last.CumulativeContributed
	s.TotalContributedInflationAdjusted = last.CumulativeContributedInflationAdjusted
	s.TotalMarketGain = last.CumulativeMarketGain

	s.TotalTermCost = decimal.Zero
	for _, r := range rows {
		s.TotalTermCost = s.TotalTermCost.Add(r.TermCost)
	}

	s.BreakEvenTarget = target
	if target.Valid {
		s.BreakEven = BreakEven(rows, target.Decimal)
	}
	return s
}
