package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/shopspring/decimal"
)

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// parseCell reads a numeric cell. Blank cells are null; currency symbols and thousands
// separators are ignored.
func parseCell(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// parseHeaderInts parses the numeric column labels that follow the fixed leading columns.
func parseHeaderInts(header []string, from int) ([]int, error) {
	out := make([]int, 0, len(header)-from)
	for i := from; i < len(header); i++ {
		n, err := parseInt(header[i])
		if err != nil {
			return nil, fmt.Errorf("header column %d: expected a year count, got %q", i+1, header[i])
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseRates reads the rate table. Leading title rows are skipped until the first row whose
// first cell is an integer age; after that, non-age rows are ignored.
func ParseRates(r io.Reader) (domain.RateTable, error) {
	reader := newReader(r)
	table := domain.RateTable{}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rates line %d: %w", line, err)
		}
		if len(record) == 0 {
			continue
		}
		age, err := parseInt(record[0])
		if err != nil {
			continue
		}

		row := make(domain.RawAgeRow, domain.RawAgeRowWidth)
		for i := 0; i < domain.RawAgeRowWidth && i < len(record); i++ {
			cell, err := parseCell(record[i])
			if err != nil {
				return nil, fmt.Errorf("rates line %d column %d: %w", line, i+1, err)
			}
			row[i] = cell
		}
		table[age] = row
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("rates: no age rows found")
	}
	return table, nil
}

// ParseMortality reads a table with header "sex,age,<years...>". Blank cells are left absent.
func ParseMortality(r io.Reader) (domain.MortalityTable, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read mortality header: %w", err)
	}
	if len(header) < 3 || !strings.EqualFold(strings.TrimSpace(header[0]), "sex") || !strings.EqualFold(strings.TrimSpace(header[1]), "age") {
		return nil, fmt.Errorf("mortality: expected header sex,age,<years...>, got %v", header)
	}
	years, err := parseHeaderInts(header, 2)
	if err != nil {
		return nil, fmt.Errorf("mortality: %w", err)
	}

	table := domain.MortalityTable{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read mortality line %d: %w", line, err)
		}
		if len(record) < 2 {
			continue
		}

		sex := domain.ParseSex(record[0])
		if !sex.Valid() {
			return nil, fmt.Errorf("mortality line %d: unknown sex %q", line, record[0])
		}
		age, err := parseInt(record[1])
		if err != nil {
			return nil, fmt.Errorf("mortality line %d: invalid age %q", line, record[1])
		}

		for j, y := range years {
			col := j + 2
			if col >= len(record) {
				break
			}
			cell, err := parseCell(record[col])
			if err != nil {
				return nil, fmt.Errorf("mortality line %d column %d: %w", line, col+1, err)
			}
			if cell.Valid {
				table.Set(sex, age, y, cell.Decimal)
			}
		}
	}
	return table, nil
}

// ParseMarketHistory reads a table with header "year,month,amount,<horizons...>". Reading stops
// at the first row whose year is not an integer, which is where the summary section begins.
func ParseMarketHistory(r io.Reader) (domain.MarketHistory, error) {
	reader := newReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read market header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("market: expected header year,month,amount,<horizons...>, got %v", header)
	}
	horizons, err := parseHeaderInts(header, 3)
	if err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}

	var history domain.MarketHistory
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read market line %d: %w", line, err)
		}
		year, err := parseInt(record[0])
		if err != nil {
			break
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("market line %d: expected at least 3 columns", line)
		}
		month, err := parseInt(record[1])
		if err != nil {
			return nil, fmt.Errorf("market line %d: invalid month %q", line, record[1])
		}
		amount, err := parseCell(record[2])
		if err != nil {
			return nil, fmt.Errorf("market line %d amount: %w", line, err)
		}

		entry := domain.MarketHistoryEntry{
			Year:   year,
			Month:  month,
			Amount: amount.Decimal,
			Growth: make(map[int]decimal.Decimal),
		}
		for j, h := range horizons {
			col := j + 3
			if col >= len(record) {
				break
			}
			cell, err := parseCell(record[col])
			if err != nil {
				return nil, fmt.Errorf("market line %d column %d: %w", line, col+1, err)
			}
			if cell.Valid {
				entry.Growth[h] = cell.Decimal
			}
		}
		history = append(history, entry)
	}
	return history, nil
}
