package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sex selects the sex-specific rate and mortality columns.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ParseSex normalizes user input ("M", "Female", ...) to a Sex. Unrecognized input yields "".
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale
	case "f", "female":
		return SexFemale
	default:
		return ""
	}
}

// Valid reports whether s is one of the known sexes.
func (s Sex) Valid() bool { return s == SexMale || s == SexFemale }

// Modeling defaults used when an assumption is left unset.
var (
	DefaultInflationRate  = decimal.NewFromFloat(0.0328)
	DefaultMarketGainRate = decimal.NewFromFloat(0.104)
)

const (
	DefaultRetirementAge        = 65
	DefaultLifeExpectancyMale   = 76
	DefaultLifeExpectancyFemale = 81
)

// DefaultLifeExpectancy returns the sex-dependent life expectancy default.
func DefaultLifeExpectancy(sex Sex) int {
	if sex == SexFemale {
		return DefaultLifeExpectancyFemale
	}
	return DefaultLifeExpectancyMale
}

// AssumptionSet is the immutable input of a single projection.
// MonthlyBudget and PolicySize are mutually exclusive drivers: one is derived from the other
// through the active rate bracket.
type AssumptionSet struct {
	Age               *int             `json:"age"`
	Sex               Sex              `json:"sex"`
	InflationRate     *decimal.Decimal `json:"inflation_rate,omitempty"`
	MarketGainRate    *decimal.Decimal `json:"market_gain_rate,omitempty"`
	RetirementAge     int              `json:"retirement_age"`
	LifeExpectancy    int              `json:"life_expectancy"`
	TobaccoUser       bool             `json:"tobacco_user"`
	CustomTimeHorizon *int             `json:"custom_time_horizon,omitempty"`

	MonthlyBudget *decimal.Decimal `json:"monthly_budget,omitempty"`
	PolicySize    *decimal.Decimal `json:"policy_size,omitempty"`

	TermPolicyLength int             `json:"term_policy_length"`
	TermBudget       decimal.Decimal `json:"term_budget"`
	TermPolicySize   decimal.Decimal `json:"term_policy_size"`

	PerformancePercentile *float64         `json:"performance_percentile,omitempty"`
	DeathBenefit          *decimal.Decimal `json:"death_benefit,omitempty"`
}

// WithDefaults returns a copy with unset rates, zero ages and zero life expectancy replaced by
// the modeling defaults. An explicit zero rate is kept. Life expectancy depends on Sex, so Sex
// should be set first.
func (a AssumptionSet) WithDefaults() AssumptionSet {
	if a.InflationRate == nil {
		d := DefaultInflationRate
		a.InflationRate = &d
	}
	if a.MarketGainRate == nil {
		d := DefaultMarketGainRate
		a.MarketGainRate = &d
	}
	if a.RetirementAge == 0 {
		a.RetirementAge = DefaultRetirementAge
	}
	if a.LifeExpectancy == 0 {
		a.LifeExpectancy = DefaultLifeExpectancy(a.Sex)
	}
	return a
}

// HasPolicySize reports whether a positive policy size drives the projection.
func (a AssumptionSet) HasPolicySize() bool {
	return a.PolicySize != nil && a.PolicySize.IsPositive()
}

// HasMonthlyBudget reports whether a positive monthly budget drives the projection.
func (a AssumptionSet) HasMonthlyBudget() bool {
	return a.MonthlyBudget != nil && a.MonthlyBudget.IsPositive()
}

// TimeHorizons holds the derived projection lengths in years.
type TimeHorizons struct {
	ToDeath      int  `json:"to_death"`
	ToRetirement int  `json:"to_retirement"`
	Custom       *int `json:"custom"`
	Active       int  `json:"active"`
}

// Horizons derives the time horizons. Age must be set.
func (a AssumptionSet) Horizons() TimeHorizons {
	age := 0
	if a.Age != nil {
		age = *a.Age
	}
	h := TimeHorizons{
		ToDeath:      a.LifeExpectancy - age,
		ToRetirement: a.RetirementAge - age,
		Custom:       a.CustomTimeHorizon,
	}
	h.Active = h.ToDeath
	if h.Custom != nil {
		h.Active = *h.Custom
	}
	return h
}
