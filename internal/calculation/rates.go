package calculation

import (
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// UncappedCeiling marks a select-bracket coverage ceiling with no upper bound.
const UncappedCeiling = 9999999

// MinorAgeLimit is the first adult age; younger applicants use the minor bracket layout.
const MinorAgeLimit = 18

// Policy-size thresholds used to pick a bracket directly from coverage amount.
var policySizeThresholds = []decimal.Decimal{
	decimal.NewFromInt(15099),
	decimal.NewFromInt(59999),
	decimal.NewFromInt(119999),
}

var bracketNames = [4]string{"Standard", "Preferred", "Executive", "Select"}

var (
	adultRanges = [4]string{"$0-$34,999", "$35,000-$59,999", "$60,000-$119,999", "$120,000-$9,999,999"}
	minorRanges = [4]string{"$0-$15,099", "$15,100-$59,999", "$60,000-$9,999,999", "-"}
)

// bracketColumns holds the (rate, cutoff) column pairs of each bracket; for Select the second
// column is the coverage ceiling rather than a monthly cutoff.
var bracketColumns = map[domain.Sex][4][2]int{
	domain.SexMale: {
		{domain.ColMaleStandardRate, domain.ColMaleStandardCutoff},
		{domain.ColMalePreferredRate, domain.ColMalePreferredCutoff},
		{domain.ColMaleExecutiveRate, domain.ColMaleExecutiveCutoff},
		{domain.ColMaleSelectRate, domain.ColMaleSelectCeiling},
	},
	domain.SexFemale: {
		{domain.ColFemaleStandardRate, domain.ColFemaleStandardCutoff},
		{domain.ColFemalePreferredRate, domain.ColFemalePreferredCutoff},
		{domain.ColFemaleExecutiveRate, domain.ColFemaleExecutiveCutoff},
		{domain.ColFemaleSelectRate, domain.ColFemaleSelectCeiling},
	},
}

// BuildBrackets builds the four rate brackets for an age and sex from its raw rate record,
// ordered by ascending coverage. It returns nil when row is nil or sex is unknown.
func BuildBrackets(age int, sex domain.Sex, row domain.RawAgeRow) []domain.RateBracket {
	cols, ok := bracketColumns[sex]
	if !ok || row == nil {
		return nil
	}

	minor := age < MinorAgeLimit
	ranges := adultRanges
	if minor {
		ranges = minorRanges
	}

	brackets := make([]domain.RateBracket, 0, len(bracketNames))
	for i := 0; i < 3; i++ {
		brackets = append(brackets, domain.RateBracket{
			Name:            bracketNames[i],
			Range:           ranges[i],
			RatePerThousand: row.Cell(cols[i][0]),
			MonthlyCutoff:   row.Cell(cols[i][1]),
		})
	}

	sel := domain.RateBracket{Name: bracketNames[3], Range: ranges[3]}
	if !minor {
		sel.RatePerThousand = row.Cell(cols[3][0])
		sel.MonthlyCutoff = selectCutoff(sel.RatePerThousand, row.Cell(cols[3][1]))
	}
	return append(brackets, sel)
}

// selectCutoff converts the select bracket's coverage ceiling into a monthly premium cutoff.
// An uncapped or missing ceiling has no cutoff.
func selectCutoff(rate, ceiling decimal.NullDecimal) decimal.NullDecimal {
	if !rate.Valid || !ceiling.Valid || ceiling.Decimal.Equal(decimal.NewFromInt(UncappedCeiling)) {
		return decimal.NullDecimal{}
	}
	monthly := ceiling.Decimal.Div(decimal.NewFromInt(1000)).Mul(rate.Decimal).Div(decimal.NewFromInt(12))
	return decimal.NullDecimal{Decimal: monthly, Valid: true}
}

// ResolveBrackets looks up the rate record for age and builds its brackets.
// The second return value is false when the table has no row for that age.
func ResolveBrackets(table domain.RateTable, age int, sex domain.Sex) ([]domain.RateBracket, bool) {
	row, ok := table[age]
	if !ok {
		return nil, false
	}
	brackets := BuildBrackets(age, sex, row)
	return brackets, brackets != nil
}

// SelectActiveBracket returns the index of the bracket that applies.
//
// A positive policy size selects by fixed coverage thresholds and ignores the table cutoffs.
// Otherwise a positive monthly budget selects the first bracket whose cutoff covers it, falling
// back to the last (uncapped) bracket. With neither, or with no brackets, nothing is selected.
func SelectActiveBracket(brackets []domain.RateBracket, policySize, monthlyBudget *decimal.Decimal) (int, bool) {
	if len(brackets) == 0 {
		return -1, false
	}

	if policySize != nil && policySize.IsPositive() {
		for i, limit := range policySizeThresholds {
			if policySize.LessThanOrEqual(limit) {
				return i, true
			}
		}
		return len(policySizeThresholds), true
	}

	if monthlyBudget != nil && monthlyBudget.IsPositive() {
		for i, b := range brackets {
			if b.MonthlyCutoff.Valid && monthlyBudget.LessThanOrEqual(b.MonthlyCutoff.Decimal) {
				return i, true
			}
		}
		return len(brackets) - 1, true
	}

	return -1, false
}
