package calculation

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReference() *domain.ReferenceData {
	return &domain.ReferenceData{
		Rates: domain.RateTable{
			40: adultRow(40, "9999999"),
			12: minorRow(12),
		},
		Mortality: testMortality(),
	}
}

func maleAt40() domain.AssumptionSet {
	return domain.AssumptionSet{
		Age:           intPtr(40),
		Sex:           domain.SexMale,
		MonthlyBudget: decPtr("200"),
	}
}

func TestEngine_ExplicitZeroRatesAreKept(t *testing.T) {
	a := maleAt40()
	a.InflationRate = decPtr("0")
	a.MarketGainRate = decPtr("0")

	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	g := res.Sections.Globals
	assert.True(t, g.InflationRate.IsZero())
	assert.True(t, g.MarketGainRate.IsZero())
	assert.True(t, g.InflationDiscount.Equal(dec("1")))

	last := res.LastRow()
	assert.True(t, last.CumulativeMarketGain.IsZero())
	assert.True(t, last.RunningBalance.Equal(dec("88800")))
	assert.True(t, last.RunningBalanceInflationAdjusted.Equal(last.RunningBalance))
}

func TestEngine_AnnualCosts(t *testing.T) {
	a := maleAt40()
	a.TermPolicyLength = 10
	a.TermBudget = dec("25")

	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)
	assert.True(t, res.Sections.Insurance.WholeLifeAnnualCost.Equal(dec("2400")))
	assert.True(t, res.Sections.Insurance.TermAnnualCost.Equal(dec("300")))
}

func TestEngine_MissingRequiredInput(t *testing.T) {
	e := NewEngine()

	_, err := e.Project(domain.AssumptionSet{Sex: domain.SexMale}, testReference())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredInput))
	assert.Contains(t, err.Error(), "age")

	_, err = e.Project(domain.AssumptionSet{Age: intPtr(40)}, testReference())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredInput))
	assert.Contains(t, err.Error(), "sex")
}

func TestEngine_AgeZeroIsNotMissing(t *testing.T) {
	_, err := NewEngine().Project(domain.AssumptionSet{Age: intPtr(0), Sex: domain.SexFemale}, nil)
	assert.NoError(t, err)
}

func TestEngine_ProjectDefaults(t *testing.T) {
	res, err := NewEngine().Project(maleAt40(), testReference())
	require.NoError(t, err)

	g := res.Sections.Globals
	assert.True(t, g.InflationRate.Equal(dec("0.0328")))
	assert.True(t, g.MarketGainRate.Equal(dec("0.104")))
	assert.True(t, g.MarketMultiplier.Equal(dec("1.104")))
	assert.Equal(t, 65, g.RetirementAge)
	assert.Equal(t, 76, g.LifeExpectancy)

	h := res.Sections.TimeHorizons
	assert.Equal(t, 36, h.ToDeath)
	assert.Equal(t, 25, h.ToRetirement)
	assert.Nil(t, h.Custom)
	assert.Equal(t, 36, h.Active)

	require.Len(t, res.Rows, 37)
	assert.True(t, res.Rows[1].RunningBalance.Equal(dec("5049.6")))
	assert.False(t, res.Summary.DegenerateHorizon)
	assert.Empty(t, res.Summary.Warnings)
}

func TestEngine_DerivesPolicySizeFromBudget(t *testing.T) {
	res, err := NewEngine().Project(maleAt40(), testReference())
	require.NoError(t, err)

	// Budget 200 exceeds every capped cutoff, so the uncapped Select bracket (0.80) applies.
	require.NotNil(t, res.Tables.RateTable.ActiveBracketIndex)
	assert.Equal(t, 3, *res.Tables.RateTable.ActiveBracketIndex)
	b, ok := res.ActiveBracket()
	require.True(t, ok)
	assert.Equal(t, "Select", b.Name)

	in := res.Sections.Inputs
	assert.True(t, in.MonthlyBudget.Equal(dec("200")))
	assert.True(t, in.PolicySize.Equal(dec("250000")), "got %s", in.PolicySize)

	ins := res.Sections.Insurance
	assert.True(t, ins.WholeLifeRate.Decimal.Equal(dec("0.80")))
	assert.True(t, ins.WholeLifeAnnualCost.Equal(dec("2400")))

	// Without a death benefit the resolved policy size is the break-even target.
	require.True(t, res.Summary.BreakEvenTarget.Valid)
	assert.True(t, res.Summary.BreakEvenTarget.Decimal.Equal(dec("250000")))
	assert.Equal(t, BreakEven(res.Rows, dec("250000")), res.Summary.BreakEven)
}

func TestEngine_DerivesBudgetFromPolicySize(t *testing.T) {
	a := domain.AssumptionSet{Age: intPtr(40), Sex: domain.SexMale, PolicySize: decPtr("80000")}
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	require.NotNil(t, res.Tables.RateTable.ActiveBracketIndex)
	assert.Equal(t, 2, *res.Tables.RateTable.ActiveBracketIndex)
	assert.True(t, res.Sections.Inputs.MonthlyBudget.Equal(dec("72")), "got %s", res.Sections.Inputs.MonthlyBudget)
	assert.True(t, res.Sections.Inputs.PolicySize.Equal(dec("80000")))
	assert.True(t, res.Rows[0].Contribution.Equal(dec("864")))
}

func TestEngine_BothSuppliedAreKept(t *testing.T) {
	a := maleAt40()
	a.PolicySize = decPtr("30000")
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	assert.Equal(t, 1, *res.Tables.RateTable.ActiveBracketIndex)
	assert.True(t, res.Sections.Inputs.MonthlyBudget.Equal(dec("200")))
	assert.True(t, res.Sections.Inputs.PolicySize.Equal(dec("30000")))
}

func TestEngine_MissingRateRowWarns(t *testing.T) {
	a := maleAt40()
	a.Age = intPtr(55)
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	assert.Nil(t, res.Tables.RateTable.ActiveBracketIndex)
	assert.Empty(t, res.Tables.RateTable.Brackets)
	assert.False(t, res.Sections.Insurance.WholeLifeRate.Valid)
	assert.True(t, res.Sections.Inputs.PolicySize.IsZero())
	assert.Len(t, res.Summary.Warnings, 2)
	assert.False(t, res.Summary.BreakEvenTarget.Valid)
	assert.Nil(t, res.Summary.BreakEven)

	// The recurrence still runs on the supplied budget.
	assert.True(t, res.Rows[0].Contribution.Equal(dec("2400")))
}

func TestEngine_NilReferenceData(t *testing.T) {
	res, err := NewEngine().Project(maleAt40(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 37)
	for _, r := range res.Rows {
		assert.False(t, r.MortalityProbability.Valid)
	}
	assert.False(t, res.Sections.Insurance.MortalityLikelihood.Valid)
}

func TestEngine_DegenerateHorizon(t *testing.T) {
	a := maleAt40()
	a.Age = intPtr(80)
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	assert.Equal(t, -4, res.Sections.TimeHorizons.Active)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Summary.DegenerateHorizon)
	assert.NotEmpty(t, res.Summary.Warnings)
}

func TestEngine_CustomHorizonAndDeathBenefit(t *testing.T) {
	a := maleAt40()
	a.CustomTimeHorizon = intPtr(2)
	a.DeathBenefit = decPtr("1000")
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	require.Len(t, res.Rows, 3)
	assert.Equal(t, 2, res.Sections.TimeHorizons.Active)
	assert.True(t, res.Summary.BreakEvenTarget.Decimal.Equal(dec("1000")))
	require.NotNil(t, res.Summary.BreakEven)
	assert.Equal(t, 0, res.Summary.BreakEven.Year)

	ml := res.Sections.Insurance.MortalityLikelihood
	require.True(t, ml.Valid)
	assert.True(t, ml.Decimal.Equal(dec("0.0044")))
}

func TestEngine_PerformancePercentileOverridesMarketRate(t *testing.T) {
	a := maleAt40()
	a.CustomTimeHorizon = intPtr(2)
	p := 50.0
	a.PerformancePercentile = &p

	ref := testReference()
	ref.MarketHistory = historyWith(2, "1.1025", "1.21", "1.44")

	res, err := NewEngine().Project(a, ref)
	require.NoError(t, err)
	assert.True(t, res.Sections.Globals.MarketGainRate.Equal(dec("0.1")), "got %s", res.Sections.Globals.MarketGainRate)
	assert.True(t, res.Rows[1].MarketGain.Equal(dec("240")))
	assert.Empty(t, res.Summary.Warnings)

	ref.MarketHistory = nil
	res, err = NewEngine().Project(a, ref)
	require.NoError(t, err)
	assert.True(t, res.Sections.Globals.MarketGainRate.Equal(dec("0.104")))
	assert.Len(t, res.Summary.Warnings, 1)
}

func TestEngine_TermPolicy(t *testing.T) {
	a := maleAt40()
	a.TermPolicyLength = 20
	a.TermBudget = dec("25")
	a.TermPolicySize = dec("500000")
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	assert.True(t, res.Sections.Insurance.TermAnnualCost.Equal(dec("300")))
	assert.True(t, res.Summary.TotalTermCost.Equal(dec("6000")))
	assert.True(t, res.Sections.Inputs.TermPolicySize.Equal(dec("500000")))
}

func TestEngine_MinorHasNoSelectBracket(t *testing.T) {
	a := domain.AssumptionSet{Age: intPtr(12), Sex: domain.SexFemale, MonthlyBudget: decPtr("500")}
	res, err := NewEngine().Project(a, testReference())
	require.NoError(t, err)

	require.Len(t, res.Tables.RateTable.Brackets, 4)
	assert.False(t, res.Tables.RateTable.Brackets[3].RatePerThousand.Valid)
	// Falls back to the last bracket, which has no rate for minors.
	assert.Equal(t, 3, *res.Tables.RateTable.ActiveBracketIndex)
	assert.True(t, res.Sections.Inputs.PolicySize.IsZero())
	assert.NotEmpty(t, res.Summary.Warnings)
}

func TestEngine_DeterministicMetadata(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	SetNowFunc(func() time.Time { return fixed })
	SetRunIDFunc(func() string { return "run-1" })
	defer SetNowFunc(time.Now)
	defer SetRunIDFunc(uuid.NewString)

	e := NewEngine()
	e.Version = "test"
	res, err := e.Project(maleAt40(), testReference())
	require.NoError(t, err)
	assert.Equal(t, fixed, res.Metadata.CalculatedAt)
	assert.Equal(t, "run-1", res.Metadata.RunID)
	assert.Equal(t, "test", res.Metadata.EngineVersion)
}

func TestEngine_IsPure(t *testing.T) {
	ref := testReference()
	e := NewEngine()
	a, err := e.Project(maleAt40(), ref)
	require.NoError(t, err)
	b, err := e.Project(maleAt40(), ref)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestEngine_SlogLogger(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine()
	e.SetLogger(NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	a := maleAt40()
	a.Age = intPtr(55)
	_, err := e.Project(a, testReference())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no rate table row for age 55")
	assert.Contains(t, buf.String(), "projected age=55")

	e.SetLogger(nil)
	assert.IsType(t, NopLogger{}, e.Logger)
}

func TestSizePolicy_ZeroRate(t *testing.T) {
	a := maleAt40()
	m, p, w := sizePolicy(a, decimal.NullDecimal{Decimal: decimal.Zero, Valid: true})
	assert.True(t, m.Equal(dec("200")))
	assert.True(t, p.IsZero())
	assert.Len(t, w, 1)
}
