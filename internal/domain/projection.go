package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionRow is the account state for one projection year. Rows are produced once per
// projection and never mutated afterwards.
type ProjectionRow struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	TermCost     decimal.Decimal `json:"term_cost"`
	Contribution decimal.Decimal `json:"contribution"`

	InflationFactor decimal.Decimal `json:"inflation_factor"`

	CumulativeContributed                  decimal.Decimal `json:"cumulative_contributed"`
	ContributionInflationAdjusted          decimal.Decimal `json:"contribution_inflation_adjusted"`
	CumulativeContributedInflationAdjusted decimal.Decimal `json:"cumulative_contributed_inflation_adjusted"`

	MarketGain           decimal.Decimal `json:"market_gain"`
	CumulativeMarketGain decimal.Decimal `json:"cumulative_market_gain"`

	// BalanceIfNoFurtherContributions is what the account would hold had this year's
	// contribution not been made.
	BalanceIfNoFurtherContributions decimal.Decimal `json:"balance_if_no_further_contributions"`
	RunningBalance                  decimal.Decimal `json:"running_balance"`
	RunningBalanceInflationAdjusted decimal.Decimal `json:"running_balance_inflation_adjusted"`

	// MortalityProbability is unknown at year 0 and wherever the table has no data.
	MortalityProbability decimal.NullDecimal `json:"mortality_probability"`
}

// BreakEvenPoint identifies the first year the no-further-contribution balance exceeds a target.
type BreakEvenPoint struct {
	Year int `json:"year"`
	Age  int `json:"age"`
}

// ProjectionSummary holds the scalar aggregates derived from the completed row sequence.
type ProjectionSummary struct {
	FinalBalance                  decimal.Decimal `json:"final_balance"`
	FinalBalanceInflationAdjusted decimal.Decimal `json:"final_balance_inflation_adjusted"`
	AccountIncome                 decimal.Decimal `json:"account_income"`
	FinalYearGrowth               decimal.Decimal `json:"final_year_growth"`

	TotalContributed                  decimal.Decimal `json:"total_contributed"`
	TotalContributedInflationAdjusted decimal.Decimal `json:"total_contributed_inflation_adjusted"`
	TotalMarketGain                   decimal.Decimal `json:"total_market_gain"`
	TotalTermCost                     decimal.Decimal `json:"total_term_cost"`

	BreakEvenTarget decimal.NullDecimal `json:"break_even_target"`
	BreakEven       *BreakEvenPoint     `json:"break_even"` // nil when never reached or not evaluated

	// DegenerateHorizon is set when the active horizon was non-positive and only year 0 exists.
	DegenerateHorizon bool     `json:"degenerate_horizon"`
	Warnings          []string `json:"warnings,omitempty"`
}

// ResultMetadata identifies a single engine run.
type ResultMetadata struct {
	RunID         string    `json:"run_id"`
	EngineVersion string    `json:"engine_version"`
	CalculatedAt  time.Time `json:"calculated_at"`
}

// GlobalsSection echoes the economic assumptions actually used.
type GlobalsSection struct {
	InflationRate         decimal.Decimal `json:"inflation_rate"`
	InflationDiscount     decimal.Decimal `json:"inflation_discount"`
	MarketGainRate        decimal.Decimal `json:"market_gain_rate"`
	MarketMultiplier      decimal.Decimal `json:"market_multiplier"`
	RetirementAge         int             `json:"retirement_age"`
	LifeExpectancy        int             `json:"life_expectancy"`
	TobaccoUser           bool            `json:"tobacco_user"`
	PerformancePercentile *float64        `json:"performance_percentile,omitempty"`
}

// InputsSection echoes the personal and policy inputs after derivation.
type InputsSection struct {
	Age              int             `json:"age"`
	Sex              Sex             `json:"sex"`
	MonthlyBudget    decimal.Decimal `json:"monthly_budget"`
	PolicySize       decimal.Decimal `json:"policy_size"`
	TermPolicyLength int             `json:"term_policy_length"`
	TermBudget       decimal.Decimal `json:"term_budget"`
	TermPolicySize   decimal.Decimal `json:"term_policy_size"`
}

// InsuranceSection summarizes the resolved insurance costs.
type InsuranceSection struct {
	WholeLifeRate       decimal.NullDecimal `json:"whole_life_rate"`
	WholeLifeAnnualCost decimal.Decimal     `json:"whole_life_annual_cost"`
	TermAnnualCost      decimal.Decimal     `json:"term_annual_cost"`
	MortalityLikelihood decimal.NullDecimal `json:"mortality_likelihood"`
}

// ResultSections groups the echoed inputs and derived constants.
type ResultSections struct {
	Globals      GlobalsSection   `json:"globals"`
	Inputs       InputsSection    `json:"inputs"`
	TimeHorizons TimeHorizons     `json:"time_horizons"`
	Insurance    InsuranceSection `json:"insurance"`
}

// RateTableView is the resolved bracket list with the selected index (nil when none applies).
type RateTableView struct {
	Age                int           `json:"age"`
	Sex                Sex           `json:"sex"`
	Brackets           []RateBracket `json:"brackets"`
	ActiveBracketIndex *int          `json:"active_bracket_index"`
}

// ResultTables holds tabular lookups resolved during the run.
type ResultTables struct {
	RateTable RateTableView `json:"rate_table"`
}

// ProjectionResult is the complete output of one engine invocation.
type ProjectionResult struct {
	Metadata ResultMetadata    `json:"metadata"`
	Sections ResultSections    `json:"sections"`
	Rows     []ProjectionRow   `json:"rows"`
	Summary  ProjectionSummary `json:"summary"`
	Tables   ResultTables      `json:"tables"`
}

// LastRow returns the final projection row, or the zero row when there are none.
func (r *ProjectionResult) LastRow() ProjectionRow {
	if len(r.Rows) == 0 {
		return ProjectionRow{}
	}
	return r.Rows[len(r.Rows)-1]
}

// ActiveBracket returns the selected bracket, if any.
func (r *ProjectionResult) ActiveBracket() (RateBracket, bool) {
	idx := r.Tables.RateTable.ActiveBracketIndex
	if idx == nil || *idx < 0 || *idx >= len(r.Tables.RateTable.Brackets) {
		return RateBracket{}, false
	}
	return r.Tables.RateTable.Brackets[*idx], true
}
