package scraper

import (
	"strings"

	"github.com/bobmcallan/nepsewatch/internal/common"
)

// Field names a semantic quote column.
type Field int

const (
	FieldSymbol Field = iota
	FieldLastPrice
	FieldPreviousClose
	FieldPercentChange
	FieldAbsoluteChange
	FieldOpenPrice

	numFields
)

// Fields lists every semantic column in resolution order.
var Fields = [numFields]Field{
	FieldSymbol,
	FieldLastPrice,
	FieldPreviousClose,
	FieldPercentChange,
	FieldAbsoluteChange,
	FieldOpenPrice,
}

func (f Field) String() string {
	switch f {
	case FieldSymbol:
		return "symbol"
	case FieldLastPrice:
		return "lastPrice"
	case FieldPreviousClose:
		return "previousClose"
	case FieldPercentChange:
		return "percentChange"
	case FieldAbsoluteChange:
		return "absoluteChange"
	case FieldOpenPrice:
		return "openPrice"
	}
	return "unknown"
}

// NotFound marks an unresolved column.
const NotFound = -1

// Aliases holds, per field, the accepted header spellings in priority order.
// Entries are lower-case; each doubles as a substring fragment for the
// fallback match.
type Aliases map[Field][]string

// DefaultAliases were taken from the merolagani Latest Market table and its
// earlier layouts.
var DefaultAliases = Aliases{
	FieldSymbol:         {"symbol"},
	FieldLastPrice:      {"ltp", "last price"},
	FieldPreviousClose:  {"prev. close", "previous closing"},
	FieldPercentChange:  {"% change", "change"},
	FieldAbsoluteChange: {"diff", "difference"},
	FieldOpenPrice:      {"open"},
}

// AliasesFromConfig overlays configured spellings on DefaultAliases. Fields
// with no configured spellings keep their defaults.
func AliasesFromConfig(cfg common.AliasConfig) Aliases {
	out := make(Aliases, len(DefaultAliases))
	for f, list := range DefaultAliases {
		out[f] = list
	}
	overlay := map[Field][]string{
		FieldSymbol:         cfg.Symbol,
		FieldLastPrice:      cfg.LastPrice,
		FieldPreviousClose:  cfg.PreviousClose,
		FieldPercentChange:  cfg.PercentChange,
		FieldAbsoluteChange: cfg.AbsoluteChange,
		FieldOpenPrice:      cfg.OpenPrice,
	}
	for f, list := range overlay {
		cleaned := normalizeAll(list)
		if len(cleaned) > 0 {
			out[f] = cleaned
		}
	}
	return out
}

// ColumnIndexMap maps each field to a zero-based column or NotFound. Build it
// with Resolve; it is not modified afterwards.
type ColumnIndexMap [numFields]int

// Index returns the column for f, or NotFound.
func (m ColumnIndexMap) Index(f Field) int {
	if f < 0 || f >= numFields {
		return NotFound
	}
	return m[f]
}

// Has reports whether f resolved to a column. This is the only way to tell
// "absent" from "parsed as zero".
func (m ColumnIndexMap) Has(f Field) bool {
	return m.Index(f) >= 0
}

// Map renders the resolution for logs and the CLI.
func (m ColumnIndexMap) Map() map[string]int {
	out := make(map[string]int, numFields)
	for _, f := range Fields {
		out[f.String()] = m[f]
	}
	return out
}

// Resolve maps header texts to fields. For each field, the alias list is
// tried as exact matches in order; failing that, the leftmost header that
// contains any alias wins; failing that, the field is NotFound. Duplicate
// header texts keep their leftmost position.
func Resolve(headers []string, aliases Aliases) ColumnIndexMap {
	normalized := make([]string, len(headers))
	position := make(map[string]int, len(headers))
	for i, h := range headers {
		n := normalizeHeader(h)
		normalized[i] = n
		if _, seen := position[n]; !seen {
			position[n] = i
		}
	}

	var m ColumnIndexMap
	for _, f := range Fields {
		m[f] = resolveField(aliases[f], normalized, position)
	}
	return m
}

func resolveField(keys []string, headers []string, position map[string]int) int {
	for _, key := range keys {
		if i, ok := position[key]; ok {
			return i
		}
	}
	for i, h := range headers {
		if h == "" {
			continue
		}
		for _, key := range keys {
			if key != "" && strings.Contains(h, key) {
				return i
			}
		}
	}
	return NotFound
}

// normalizeHeader lower-cases and trims header text, collapsing internal runs
// of whitespace left behind by nested markup.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func normalizeAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if n := normalizeHeader(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}
