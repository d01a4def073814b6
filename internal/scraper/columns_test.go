package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/nepsewatch/internal/common"
)

func TestResolve_ExactMatchBeatsSubstring(t *testing.T) {
	cols := Resolve([]string{"Previous Closing", "X"}, DefaultAliases)
	assert.Equal(t, 0, cols.Index(FieldPreviousClose))
}

func TestResolve_ExactMatchWinsOverEarlierSubstringHeader(t *testing.T) {
	// "change" is a substring of "% change"; the exact alias "% change" must
	// still win even though a substring candidate appears first.
	cols := Resolve([]string{"Symbol", "Price Change Note", "% Change"}, DefaultAliases)
	assert.Equal(t, 2, cols.Index(FieldPercentChange))
}

func TestResolve_SubstringFallback(t *testing.T) {
	cols := Resolve([]string{"LTP (Rs)"}, DefaultAliases)
	assert.Equal(t, 0, cols.Index(FieldLastPrice))
}

func TestResolve_SubstringPicksLeftmostHeader(t *testing.T) {
	cols := Resolve([]string{"Symbol", "Opening Price", "Re-open Flag"}, DefaultAliases)
	assert.Equal(t, 1, cols.Index(FieldOpenPrice))
}

func TestResolve_UnresolvedFieldsAreNotFound(t *testing.T) {
	cols := Resolve([]string{"Symbol", "LTP"}, DefaultAliases)

	assert.True(t, cols.Has(FieldSymbol))
	assert.True(t, cols.Has(FieldLastPrice))
	for _, f := range []Field{FieldPreviousClose, FieldPercentChange, FieldAbsoluteChange, FieldOpenPrice} {
		assert.Equal(t, NotFound, cols.Index(f), f.String())
		assert.False(t, cols.Has(f), f.String())
	}
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	cols := Resolve([]string{"  SYMBOL ", "\n  Last\n   Price  ", "PREV. CLOSE"}, DefaultAliases)

	assert.Equal(t, 0, cols.Index(FieldSymbol))
	assert.Equal(t, 1, cols.Index(FieldLastPrice))
	assert.Equal(t, 2, cols.Index(FieldPreviousClose))
}

func TestResolve_DuplicateHeadersKeepFirst(t *testing.T) {
	cols := Resolve([]string{"Symbol", "LTP", "Symbol"}, DefaultAliases)
	assert.Equal(t, 0, cols.Index(FieldSymbol))
}

func TestResolve_AliasOrderIsPriority(t *testing.T) {
	// Both spellings exist; "ltp" is listed first for lastPrice.
	cols := Resolve([]string{"Last Price", "LTP"}, DefaultAliases)
	assert.Equal(t, 1, cols.Index(FieldLastPrice))
}

func TestResolve_MerolaganiLayout(t *testing.T) {
	headers := []string{"#", "Symbol", "LTP", "% Change", "Open", "High", "Low", "Qty.", "PClose", "Diff"}
	cols := Resolve(headers, DefaultAliases)

	assert.Equal(t, 1, cols.Index(FieldSymbol))
	assert.Equal(t, 2, cols.Index(FieldLastPrice))
	assert.Equal(t, 3, cols.Index(FieldPercentChange))
	assert.Equal(t, 4, cols.Index(FieldOpenPrice))
	assert.Equal(t, 9, cols.Index(FieldAbsoluteChange))
	assert.Equal(t, NotFound, cols.Index(FieldPreviousClose))
}

func TestResolve_EmptyHeaders(t *testing.T) {
	cols := Resolve(nil, DefaultAliases)
	for _, f := range Fields {
		assert.Equal(t, NotFound, cols.Index(f))
	}
}

func TestColumnIndexMap_Map(t *testing.T) {
	cols := Resolve([]string{"Symbol", "LTP"}, DefaultAliases)
	m := cols.Map()

	assert.Len(t, m, 6)
	assert.Equal(t, 0, m["symbol"])
	assert.Equal(t, 1, m["lastPrice"])
	assert.Equal(t, NotFound, m["openPrice"])
}

func TestAliasesFromConfig_OverlaysDefaults(t *testing.T) {
	aliases := AliasesFromConfig(common.AliasConfig{
		LastPrice:      []string{" Last Traded Price ", ""},
		PreviousClose:  []string{"PClose"},
		AbsoluteChange: nil,
	})

	assert.Equal(t, []string{"last traded price"}, aliases[FieldLastPrice])
	assert.Equal(t, []string{"pclose"}, aliases[FieldPreviousClose])
	assert.Equal(t, DefaultAliases[FieldAbsoluteChange], aliases[FieldAbsoluteChange])
	assert.Equal(t, DefaultAliases[FieldSymbol], aliases[FieldSymbol])

	cols := Resolve([]string{"Symbol", "Last Traded Price", "PClose"}, aliases)
	assert.Equal(t, 1, cols.Index(FieldLastPrice))
	assert.Equal(t, 2, cols.Index(FieldPreviousClose))
}

func TestAliasesFromConfig_DoesNotMutateDefaults(t *testing.T) {
	_ = AliasesFromConfig(common.AliasConfig{Symbol: []string{"scrip"}})
	assert.Equal(t, []string{"symbol"}, DefaultAliases[FieldSymbol])
}
