package domain

import (
	"github.com/shopspring/decimal"
)

// RawAgeRow is one positional record of the rate table. Index 0 holds the age; the remaining
// cells are rate-per-thousand / monthly-cutoff pairs per bracket and sex, null where undefined.
type RawAgeRow []decimal.NullDecimal

// Rate table column layout.
const (
	ColAge = 0

	ColMaleStandardRate      = 1
	ColMaleStandardCutoff    = 2
	ColFemaleStandardRate    = 3
	ColFemaleStandardCutoff  = 4
	ColMalePreferredRate     = 5
	ColMalePreferredCutoff   = 6
	ColFemalePreferredRate   = 7
	ColFemalePreferredCutoff = 8
	ColMaleExecutiveRate     = 9
	ColMaleExecutiveCutoff   = 10
	ColFemaleExecutiveRate   = 11
	ColFemaleExecutiveCutoff = 12
	ColMaleSelectRate        = 13
	ColMaleSelectCeiling     = 14
	ColFemaleSelectRate      = 15
	ColFemaleSelectCeiling   = 16

	RawAgeRowWidth = 17
)

// Cell returns the value at column i, or an invalid NullDecimal when the row is too short.
func (r RawAgeRow) Cell(i int) decimal.NullDecimal {
	if i < 0 || i >= len(r) {
		return decimal.NullDecimal{}
	}
	return r[i]
}

// RateTable maps an age to its raw rate record.
type RateTable map[int]RawAgeRow

// RateBracket is a coverage/pricing tier.
type RateBracket struct {
	Name            string              `json:"name"`
	Range           string              `json:"range"`
	RatePerThousand decimal.NullDecimal `json:"rate_per_thousand"`
	MonthlyCutoff   decimal.NullDecimal `json:"monthly_cutoff"`
}

// MortalityTable maps sex → age → years ahead → probability of death within that many years.
// A missing key at any level means the probability is unknown, not zero.
type MortalityTable map[Sex]map[int]map[int]decimal.Decimal

// Probability returns the stored probability and whether it exists.
func (t MortalityTable) Probability(sex Sex, age, yearsAhead int) (decimal.Decimal, bool) {
	byAge, ok := t[sex]
	if !ok {
		return decimal.Zero, false
	}
	byYears, ok := byAge[age]
	if !ok {
		return decimal.Zero, false
	}
	p, ok := byYears[yearsAhead]
	return p, ok
}

// Set stores a probability, creating intermediate maps as needed.
func (t MortalityTable) Set(sex Sex, age, yearsAhead int, p decimal.Decimal) {
	byAge, ok := t[sex]
	if !ok {
		byAge = make(map[int]map[int]decimal.Decimal)
		t[sex] = byAge
	}
	byYears, ok := byAge[age]
	if !ok {
		byYears = make(map[int]decimal.Decimal)
		byAge[age] = byYears
	}
	byYears[yearsAhead] = p
}

// MarketHistoryEntry is one historical market observation with the cumulative growth multiple
// realized over each horizon (in years) starting at that observation.
type MarketHistoryEntry struct {
	Year   int                     `json:"year"`
	Month  int                     `json:"month"`
	Amount decimal.Decimal         `json:"amount"`
	Growth map[int]decimal.Decimal `json:"growth"`
}

// MarketHistory is the ordered sequence of market observations.
type MarketHistory []MarketHistoryEntry

// ReferenceData bundles the already-parsed tables the engine consumes.
type ReferenceData struct {
	Rates         RateTable      `json:"-"`
	Mortality     MortalityTable `json:"-"`
	MarketHistory MarketHistory  `json:"-"`
}
