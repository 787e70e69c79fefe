package calculation

import (
	"math"
	"testing"

	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowRows(startAge int, balances ...string) []domain.ProjectionRow {
	rows := make([]domain.ProjectionRow, len(balances))
	for i, b := range balances {
		rows[i] = domain.ProjectionRow{Year: i, Age: startAge + i, BalanceIfNoFurtherContributions: dec(b)}
	}
	return rows
}

func TestBreakEven_FirstStrictlyGreaterYear(t *testing.T) {
	rows := windowRows(40, "100000", "300000", "499999", "500000", "500001", "700000")
	be := BreakEven(rows, dec("500000"))
	require.NotNil(t, be)
	assert.Equal(t, 4, be.Year)
	assert.Equal(t, 44, be.Age)
}

func TestBreakEven_Never(t *testing.T) {
	rows := windowRows(40, "100000", "300000", "500000")
	assert.Nil(t, BreakEven(rows, dec("500000")))
	assert.Nil(t, BreakEven(nil, dec("500000")))
}

func TestBreakEven_YearZero(t *testing.T) {
	rows := windowRows(30, "600000", "700000")
	be := BreakEven(rows, dec("500000"))
	require.NotNil(t, be)
	assert.Equal(t, 0, be.Year)
}

func TestCalculateEndingGrowth(t *testing.T) {
	rows := ProjectRows(ProjectionParams{
		Age:            40,
		Sex:            domain.SexMale,
		Horizon:        3,
		MonthlyBudget:  dec("100"),
		MarketGainRate: dec("0.10"),
	})
	// RB: 1200, 2520, 3972; window balance: 1200, 1320, 2772, 4369.2

	eg, err := CalculateEndingGrowth(rows, 2, dec("1.10"), 1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, eg.CutoffYear)
	assert.True(t, eg.Year.Equal(dec("252")), "got %s", eg.Year)

	wantMonth := 2772 - 2520*math.Pow(1.10, 11.0/12.0)
	assert.InDelta(t, wantMonth, eg.Month.InexactFloat64(), 0.01)
	wantDay := 2772 - 2520*math.Pow(1.10, 364.0/365.0)
	assert.InDelta(t, wantDay, eg.Day.InexactFloat64(), 0.01)
	assert.True(t, eg.Day.LessThan(eg.Week))
	assert.True(t, eg.Week.LessThan(eg.Month))

	require.Len(t, eg.Trailing, 2)
	assert.True(t, eg.Trailing[1].Equal(dec("1452")))
	assert.True(t, eg.Trailing[2].Equal(dec("1572")))
	_, ok := eg.Trailing[5]
	assert.False(t, ok)
}

func TestCalculateEndingGrowth_OutOfRange(t *testing.T) {
	rows := windowRows(40, "1", "2", "3")
	_, err := CalculateEndingGrowth(rows, 0, dec("1.1"))
	assert.Error(t, err)
	_, err = CalculateEndingGrowth(rows, 3, dec("1.1"))
	assert.Error(t, err)
}
