package calculation

import (
	"fmt"

	"github.com/rpgo/policy-projector/internal/domain"
	money "github.com/rpgo/policy-projector/pkg/decimal"
	"github.com/shopspring/decimal"
)

// EngineVersion is stamped on every projection result.
const EngineVersion = "2026.02.13"

var thousand = decimal.NewFromInt(1000)

// Engine runs projections against caller-supplied reference data. It holds no table state of
// its own, so one Engine may serve concurrent callers.
type Engine struct {
	Version string
	Logger  Logger
}

// NewEngine creates a projection engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{
		Version: EngineVersion,
		Logger:  NopLogger{},
	}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Project resolves the rate bracket, sizes the contribution and runs the yearly recurrence for
// one assumption set. ref may be nil; missing tables only leave the dependent fields unknown.
// The only error is ErrMissingRequiredInput.
func (e *Engine) Project(assumptions domain.AssumptionSet, ref *domain.ReferenceData) (*domain.ProjectionResult, error) {
	if assumptions.Age == nil {
		return nil, fmt.Errorf("%w: age", ErrMissingRequiredInput)
	}
	if !assumptions.Sex.Valid() {
		return nil, fmt.Errorf("%w: sex", ErrMissingRequiredInput)
	}
	if ref == nil {
		ref = &domain.ReferenceData{}
	}

	a := assumptions.WithDefaults()
	age := *a.Age
	horizons := a.Horizons()
	var warnings []string

	brackets, found := ResolveBrackets(ref.Rates, age, a.Sex)
	if !found {
		warnings = append(warnings, fmt.Sprintf("no rate table row for age %d", age))
		e.Logger.Warnf("no rate table row for age %d", age)
	}
	activeIdx, selected := SelectActiveBracket(brackets, a.PolicySize, a.MonthlyBudget)

	rate := decimal.NullDecimal{}
	if selected {
		rate = brackets[activeIdx].RatePerThousand
	}
	monthlyBudget, policySize, w := sizePolicy(a, rate)
	warnings = append(warnings, w...)

	inflationRate := *a.InflationRate
	marketGainRate := *a.MarketGainRate
	if a.PerformancePercentile != nil {
		if cagr, ok := CAGRForPercentile(ref.MarketHistory, *a.PerformancePercentile, horizons.Active); ok {
			marketGainRate = cagr
		} else {
			warnings = append(warnings, fmt.Sprintf("no market history for a %d-year horizon; using market gain rate %s", horizons.Active, marketGainRate.String()))
		}
	}

	rows := ProjectRows(ProjectionParams{
		Age:              age,
		Sex:              a.Sex,
		Horizon:          horizons.Active,
		MonthlyBudget:    monthlyBudget,
		TermBudget:       a.TermBudget,
		TermPolicyLength: a.TermPolicyLength,
		InflationRate:    inflationRate,
		MarketGainRate:   marketGainRate,
		Mortality:        ref.Mortality,
	})

	summary := Summarize(rows, marketGainRate, breakEvenTarget(a, policySize))
	if horizons.Active <= 0 {
		summary.DegenerateHorizon = true
		warnings = append(warnings, fmt.Sprintf("active horizon %d is not positive; projection holds year 0 only", horizons.Active))
	}
	summary.Warnings = warnings

	result := &domain.ProjectionResult{
		Metadata: domain.ResultMetadata{
			RunID:         runIDFunc(),
			EngineVersion: e.Version,
			CalculatedAt:  nowFunc(),
		},
		Sections: domain.ResultSections{
			Globals: domain.GlobalsSection{
				InflationRate:         inflationRate,
				InflationDiscount:     InflationDiscount(inflationRate),
				MarketGainRate:        marketGainRate,
				MarketMultiplier:      one.Add(marketGainRate),
				RetirementAge:         a.RetirementAge,
				LifeExpectancy:        a.LifeExpectancy,
				TobaccoUser:           a.TobaccoUser,
				PerformancePercentile: a.PerformancePercentile,
			},
			Inputs: domain.InputsSection{
				Age:              age,
				Sex:              a.Sex,
				MonthlyBudget:    monthlyBudget,
				PolicySize:       policySize,
				TermPolicyLength: a.TermPolicyLength,
				TermBudget:       a.TermBudget,
				TermPolicySize:   a.TermPolicySize,
			},
			TimeHorizons: horizons,
			Insurance: domain.InsuranceSection{
				WholeLifeRate:       rate,
				WholeLifeAnnualCost: money.NewMoneyFromDecimal(monthlyBudget).Annual().Decimal,
				TermAnnualCost:      money.NewMoneyFromDecimal(a.TermBudget).Annual().Decimal,
				MortalityLikelihood: ProbabilityOfDeath(ref.Mortality, a.Sex, age, horizons.Active),
			},
		},
		Rows:    rows,
		Summary: summary,
		Tables: domain.ResultTables{
			RateTable: domain.RateTableView{
				Age:      age,
				Sex:      a.Sex,
				Brackets: brackets,
			},
		},
	}
	if selected {
		idx := activeIdx
		result.Tables.RateTable.ActiveBracketIndex = &idx
	}

	e.Logger.Debugf("projected age=%d sex=%s horizon=%d final=%s", age, a.Sex, horizons.Active, summary.FinalBalance.StringFixed(2))
	return result, nil
}

// sizePolicy derives whichever of monthly budget and policy size was not supplied from the
// other through the bracket rate. Supplied values are kept as given. Without a usable rate the
// derived value is zero.
func sizePolicy(a domain.AssumptionSet, rate decimal.NullDecimal) (monthlyBudget, policySize decimal.Decimal, warnings []string) {
	usable := rate.Valid && !rate.Decimal.IsZero()

	if a.HasMonthlyBudget() {
		monthlyBudget = *a.MonthlyBudget
	} else if a.HasPolicySize() {
		if usable {
			monthlyBudget = a.PolicySize.Div(thousand).Mul(rate.Decimal)
		} else {
			warnings = append(warnings, "no applicable rate; monthly budget cannot be derived from policy size")
		}
	}

	if a.HasPolicySize() {
		policySize = *a.PolicySize
	} else if a.HasMonthlyBudget() {
		if usable {
			policySize = a.MonthlyBudget.Div(rate.Decimal).Mul(thousand)
		} else {
			warnings = append(warnings, "no applicable rate; policy size cannot be derived from monthly budget")
		}
	}
	return monthlyBudget, policySize, warnings
}

// breakEvenTarget picks the explicit death benefit, falling back to the resolved policy size.
func breakEvenTarget(a domain.AssumptionSet, policySize decimal.Decimal) decimal.NullDecimal {
	if a.DeathBenefit != nil {
		return decimal.NullDecimal{Decimal: *a.DeathBenefit, Valid: true}
	}
	if policySize.IsPositive() {
		return decimal.NullDecimal{Decimal: policySize, Valid: true}
	}
	return decimal.NullDecimal{}
}
