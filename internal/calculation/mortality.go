package calculation

import (
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// ProbabilityOfDeath returns the probability that a person of the given sex and age dies within
// yearsAhead years. The result is invalid (unknown) when the table has no entry for any of the
// keys; callers must not read that as zero risk.
func ProbabilityOfDeath(table domain.MortalityTable, sex domain.Sex, age, yearsAhead int) decimal.NullDecimal {
	p, ok := table.Probability(sex, age, yearsAhead)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: p, Valid: true}
}

// MortalityCurve returns the death probabilities for years 0..horizon ahead of age. Year 0 is
// always unknown. A nil slice is returned when the table has no data for the age at all.
func MortalityCurve(table domain.MortalityTable, sex domain.Sex, age, horizon int) []decimal.NullDecimal {
	if _, ok := table[sex][age]; !ok {
		return nil
	}
	if horizon < 0 {
		horizon = 0
	}
	curve := make([]decimal.NullDecimal, horizon+1)
	for year := 1; year <= horizon; year++ {
		curve[year] = ProbabilityOfDeath(table, sex, age, year)
	}
	return curve
}
