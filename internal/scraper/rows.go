package scraper

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

// numberNoise is stripped before parsing: thousands separators, percent
// signs and the spacing the page pads cells with.
var numberNoise = strings.NewReplacer(",", "", "%", "", " ", "", "\u00a0", "", "\t", "")

// ParseNumber coerces cell text to a float. Empty or unparsable text yields 0;
// it never fails.
func ParseNumber(s string) float64 {
	s = numberNoise.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// DerivePreviousPrice reconstructs the previous close from the change columns:
// an absolute change wins, then a percent change, otherwise the day is taken
// as flat. The result is rounded to two decimals.
func DerivePreviousPrice(current, diff, percentChange float64) float64 {
	var prev float64
	switch {
	case diff != 0:
		prev = current - diff
	case percentChange != 0:
		prev = current / (1 + percentChange/100)
	default:
		prev = current
	}
	return Round2(prev)
}

// cell returns the trimmed text at idx, or "" when the column is unresolved
// or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Extract turns one body row into a quote. The bool is false when the row
// has no symbol or no positive last price; such rows are noise, not errors.
func Extract(row []string, cols ColumnIndexMap) (models.Quote, bool) {
	symbol := cell(row, cols.Index(FieldSymbol))
	current := ParseNumber(cell(row, cols.Index(FieldLastPrice)))
	if symbol == "" || current <= 0 {
		return models.Quote{}, false
	}

	diff := ParseNumber(cell(row, cols.Index(FieldAbsoluteChange)))
	pct := ParseNumber(cell(row, cols.Index(FieldPercentChange)))
	open := ParseNumber(cell(row, cols.Index(FieldOpenPrice)))

	var previous float64
	if published := ParseNumber(cell(row, cols.Index(FieldPreviousClose))); published > 0 {
		previous = Round2(published)
	} else {
		previous = DerivePreviousPrice(current, diff, pct)
	}

	return models.Quote{
		Symbol:        symbol,
		Name:          symbol,
		CurrentPrice:  current,
		PreviousPrice: previous,
		OpenPrice:     open,
		Sector:        models.SectorUnknown,
	}, true
}
