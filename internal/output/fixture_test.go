package output

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func testRates() domain.RateTable {
	row := make(domain.RawAgeRow, domain.RawAgeRowWidth)
	row[domain.ColAge] = nd("40")
	row[domain.ColMaleStandardRate] = nd("1.10")
	row[domain.ColMaleStandardCutoff] = nd("38.50")
	row[domain.ColMalePreferredRate] = nd("1.00")
	row[domain.ColMalePreferredCutoff] = nd("60.00")
	row[domain.ColMaleExecutiveRate] = nd("0.90")
	row[domain.ColMaleExecutiveCutoff] = nd("108.00")
	row[domain.ColMaleSelectRate] = nd("0.80")
	row[domain.ColMaleSelectCeiling] = nd("9999999")
	return domain.RateTable{40: row}
}

// buildTestResult projects a 40-year-old man at $200/month with a 10-year $25/month term policy.
func buildTestResult(t *testing.T) *domain.ProjectionResult {
	t.Helper()
	calculation.SetNowFunc(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	calculation.SetRunIDFunc(func() string { return "test-run" })
	t.Cleanup(func() {
		calculation.SetNowFunc(time.Now)
		calculation.SetRunIDFunc(uuid.NewString)
	})

	mortality := domain.MortalityTable{}
	mortality.Set(domain.SexMale, 40, 1, decimal.RequireFromString("0.0021"))

	age := 40
	budget := decimal.NewFromInt(200)
	res, err := calculation.NewEngine().Project(domain.AssumptionSet{
		Age:              &age,
		Sex:              domain.SexMale,
		MonthlyBudget:    &budget,
		TermPolicyLength: 10,
		TermBudget:       decimal.NewFromInt(25),
		TermPolicySize:   decimal.NewFromInt(500000),
	}, &domain.ReferenceData{Rates: testRates(), Mortality: mortality})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	return res
}
