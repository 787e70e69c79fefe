package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// BreakEven returns the first year whose no-further-contribution balance strictly exceeds the
// death benefit, or nil if the account never gets there within the projection.
func BreakEven(rows []domain.ProjectionRow, deathBenefit decimal.Decimal) *domain.BreakEvenPoint {
	for _, r := range rows {
		if r.BalanceIfNoFurtherContributions.GreaterThan(deathBenefit) {
			return &domain.BreakEvenPoint{Year: r.Year, Age: r.Age}
		}
	}
	return nil
}

// EndingGrowth describes how much the account grew in the final stretch before a cutoff year,
// had contributions stopped there.
type EndingGrowth struct {
	CutoffYear int             `json:"cutoff_year"`
	Day        decimal.Decimal `json:"day"`
	Week       decimal.Decimal `json:"week"`
	Month      decimal.Decimal `json:"month"`
	Year       decimal.Decimal `json:"year"`

	// Trailing maps a look-back length in years to the growth over that window.
	Trailing map[int]decimal.Decimal `json:"trailing,omitempty"`
}

// CalculateEndingGrowth measures the growth in the last day, week, month and year before
// cutoffYear, plus the growth over each requested trailing window. Windows reaching before
// year 0 are skipped. All amounts are rounded to cents.
func CalculateEndingGrowth(rows []domain.ProjectionRow, cutoffYear int, marketMultiplier decimal.Decimal, lookbacks ...int) (*EndingGrowth, error) {
	if cutoffYear < 1 || cutoffYear >= len(rows) {
		return nil, fmt.Errorf("cutoff year %d outside projection range 1..%d", cutoffYear, len(rows)-1)
	}

	prev := rows[cutoffYear-1].RunningBalance
	current := rows[cutoffYear].BalanceIfNoFurtherContributions
	mult := marketMultiplier.InexactFloat64()

	partial := func(fraction float64) decimal.Decimal {
		grown := prev.Mul(decimal.NewFromFloat(math.Pow(mult, fraction)))
		return current.Sub(grown).Round(2)
	}

	eg := &EndingGrowth{
		CutoffYear: cutoffYear,
		Day:        partial(364.0 / 365.0),
		Week:       partial(51.0 / 52.0),
		Month:      partial(11.0 / 12.0),
		Year:       current.Sub(prev).Round(2),
	}

	for _, years := range lookbacks {
		start := cutoffYear - years
		if years <= 0 || start < 0 {
			continue
		}
		if eg.Trailing == nil {
			eg.Trailing = make(map[int]decimal.Decimal)
		}
		eg.Trailing[years] = current.Sub(rows[start].BalanceIfNoFurtherContributions).Round(2)
	}
	return eg, nil
}
