package calculation

import (
	"math"
	"sort"

	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

// PercentileGrowth returns the empirical percentile of the cumulative growth multiples recorded
// for horizonYears across the market history. percentile is clamped to [0, 100] and the sample
// is indexed at floor(p/100 × (N−1)), so 0 and 100 select the minimum and maximum. The second
// return value is false when no entry carries a value for that horizon.
func PercentileGrowth(history domain.MarketHistory, horizonYears int, percentile float64) (decimal.Decimal, bool) {
	values := make([]decimal.Decimal, 0, len(history))
	for _, entry := range history {
		if g, ok := entry.Growth[horizonYears]; ok {
			values = append(values, g)
		}
	}
	if len(values) == 0 {
		return decimal.Zero, false
	}

	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	idx := int(math.Floor(clampPercentile(percentile) / 100 * float64(len(values)-1)))
	return values[idx], true
}

func clampPercentile(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// AnnualizedRate converts a total growth multiple realized over years periods into a compound
// annual growth rate: growth^(1/years) − 1. It is undefined for non-positive years and for a
// negative growth multiple.
func AnnualizedRate(growth decimal.Decimal, years int) (decimal.Decimal, bool) {
	if years <= 0 || growth.IsNegative() {
		return decimal.Zero, false
	}
	// decimal has no fractional roots; the float result is rounded back to 10 places.
	root := math.Pow(growth.InexactFloat64(), 1/float64(years))
	return decimal.NewFromFloat(root - 1).Round(10), true
}

// CAGRForPercentile returns the annualized growth rate at the given percentile of historical
// outcomes over a years-long horizon.
func CAGRForPercentile(history domain.MarketHistory, percentile float64, years int) (decimal.Decimal, bool) {
	growth, ok := PercentileGrowth(history, years, percentile)
	if !ok {
		return decimal.Zero, false
	}
	return AnnualizedRate(growth, years)
}
