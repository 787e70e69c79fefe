package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseSex(t *testing.T) {
	tests := map[string]Sex{
		"male":     SexMale,
		"M":        SexMale,
		" Female ": SexFemale,
		"f":        SexFemale,
		"":         "",
		"other":    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSex(in), "input %q", in)
	}
	assert.True(t, SexMale.Valid())
	assert.False(t, Sex("").Valid())
}

func TestWithDefaults(t *testing.T) {
	age := 40
	a := AssumptionSet{Age: &age, Sex: SexFemale}.WithDefaults()

	assert.True(t, a.InflationRate.Equal(decimal.RequireFromString("0.0328")))
	assert.True(t, a.MarketGainRate.Equal(decimal.RequireFromString("0.104")))
	assert.Equal(t, 65, a.RetirementAge)
	assert.Equal(t, 81, a.LifeExpectancy)

	inflation := decimal.RequireFromString("0.02")
	custom := AssumptionSet{
		Sex:            SexMale,
		InflationRate:  &inflation,
		RetirementAge:  60,
		LifeExpectancy: 90,
	}.WithDefaults()
	assert.True(t, custom.InflationRate.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, 60, custom.RetirementAge)
	assert.Equal(t, 90, custom.LifeExpectancy)
	assert.Equal(t, 76, AssumptionSet{Sex: SexMale}.WithDefaults().LifeExpectancy)
}

func TestWithDefaults_KeepsExplicitZeroRates(t *testing.T) {
	zero := decimal.Zero
	a := AssumptionSet{Sex: SexMale, InflationRate: &zero, MarketGainRate: &zero}.WithDefaults()

	assert.True(t, a.InflationRate.IsZero())
	assert.True(t, a.MarketGainRate.IsZero())
	assert.True(t, zero.IsZero(), "defaults never write through the caller's pointer")
}

func TestDriversRequirePositiveValues(t *testing.T) {
	zero := decimal.Zero
	neg := decimal.NewFromInt(-5)
	pos := decimal.NewFromInt(100)

	assert.False(t, AssumptionSet{}.HasPolicySize())
	assert.False(t, AssumptionSet{PolicySize: &zero}.HasPolicySize())
	assert.False(t, AssumptionSet{PolicySize: &neg}.HasPolicySize())
	assert.True(t, AssumptionSet{PolicySize: &pos}.HasPolicySize())

	assert.False(t, AssumptionSet{MonthlyBudget: &zero}.HasMonthlyBudget())
	assert.True(t, AssumptionSet{MonthlyBudget: &pos}.HasMonthlyBudget())
}

func TestHorizons(t *testing.T) {
	age := 40
	a := AssumptionSet{Age: &age, Sex: SexMale}.WithDefaults()
	h := a.Horizons()
	assert.Equal(t, 36, h.ToDeath)
	assert.Equal(t, 25, h.ToRetirement)
	assert.Nil(t, h.Custom)
	assert.Equal(t, 36, h.Active)

	custom := 10
	a.CustomTimeHorizon = &custom
	h = a.Horizons()
	assert.Equal(t, 10, h.Active)
	assert.Equal(t, 36, h.ToDeath)

	old := 90
	a = AssumptionSet{Age: &old, Sex: SexMale}.WithDefaults()
	assert.Equal(t, -14, a.Horizons().Active)
}
