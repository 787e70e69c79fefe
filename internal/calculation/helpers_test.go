package calculation

import (
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

func intPtr(i int) *int { return &i }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// adultRow builds a rate record in which every bracket of both sexes is populated.
func adultRow(age int, selectCeiling string) domain.RawAgeRow {
	row := make(domain.RawAgeRow, domain.RawAgeRowWidth)
	row[domain.ColAge] = nd(decimal.NewFromInt(int64(age)).String())
	row[domain.ColMaleStandardRate] = nd("1.10")
	row[domain.ColMaleStandardCutoff] = nd("38.50")
	row[domain.ColFemaleStandardRate] = nd("0.95")
	row[domain.ColFemaleStandardCutoff] = nd("33.25")
	row[domain.ColMalePreferredRate] = nd("1.00")
	row[domain.ColMalePreferredCutoff] = nd("60.00")
	row[domain.ColFemalePreferredRate] = nd("0.90")
	row[domain.ColFemalePreferredCutoff] = nd("54.00")
	row[domain.ColMaleExecutiveRate] = nd("0.90")
	row[domain.ColMaleExecutiveCutoff] = nd("108.00")
	row[domain.ColFemaleExecutiveRate] = nd("0.80")
	row[domain.ColFemaleExecutiveCutoff] = nd("96.00")
	row[domain.ColMaleSelectRate] = nd("0.80")
	row[domain.ColMaleSelectCeiling] = nd(selectCeiling)
	row[domain.ColFemaleSelectRate] = nd("0.70")
	row[domain.ColFemaleSelectCeiling] = nd(selectCeiling)
	return row
}

// minorRow builds a rate record with only the three minor brackets populated.
func minorRow(age int) domain.RawAgeRow {
	row := adultRow(age, "9999999")
	for _, c := range []int{domain.ColMaleSelectRate, domain.ColMaleSelectCeiling, domain.ColFemaleSelectRate, domain.ColFemaleSelectCeiling} {
		row[c] = decimal.NullDecimal{}
	}
	return row
}
