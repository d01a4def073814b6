// Package scraper turns the merolagani Latest Market HTML into typed quotes.
//
// The page is not an API: its table class, column names and column order have
// all changed over time. Parsing is split into a locator (which table), a
// column resolver (which column holds what) and a row extractor (what a row
// is worth), so a layout change is fixed in one place.
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

// Parser holds the per-site rules. It keeps no state between calls and is
// safe for concurrent use.
type Parser struct {
	locator Locator
	aliases Aliases
}

// NewParser returns a parser for the given table selector and aliases. Empty
// arguments fall back to the defaults.
func NewParser(selector string, aliases Aliases) *Parser {
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	return &Parser{locator: NewLocator(selector), aliases: aliases}
}

// NewParserFromConfig builds a parser from the [market] config section.
func NewParserFromConfig(cfg common.MarketConfig) *Parser {
	return NewParser(cfg.TableSelector, AliasesFromConfig(cfg.Aliases))
}

// Selector returns the table selector in use.
func (p *Parser) Selector() string {
	return p.locator.Selector
}

// Result is the outcome of one parse. Quotes is never nil.
type Result struct {
	Quotes      []models.Quote
	Columns     ColumnIndexMap
	Headers     []string
	RowsSeen    int
	RowsSkipped int
}

// fetchCycle is the transient state of one parse: the document, its column
// map and the quotes accumulated so far.
type fetchCycle struct {
	doc     *goquery.Document
	columns ColumnIndexMap
	headers []string
	rows    [][]string
	quotes  []models.Quote
	skipped int
}

// Parse runs locate → resolve → extract → assemble over an HTML document.
// A missing table or unresolvable columns return a *ParseError; an empty
// table returns an empty, non-nil quote slice and no error.
func (p *Parser) Parse(html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	cycle := &fetchCycle{doc: doc}

	table, err := p.locator.Locate(doc)
	if err != nil {
		return nil, err
	}

	cycle.headers, cycle.rows = tableLayout(table)
	cycle.columns = Resolve(cycle.headers, p.aliases)

	if len(cycle.rows) > 0 && !cycle.columns.Has(FieldSymbol) && !cycle.columns.Has(FieldLastPrice) {
		return nil, &ParseError{Selector: p.locator.Selector, Err: ErrColumnsNotFound}
	}

	cycle.quotes = Assemble(cycle.rows, cycle.columns)
	cycle.skipped = len(cycle.rows) - len(cycle.quotes)

	return &Result{
		Quotes:      cycle.quotes,
		Columns:     cycle.columns,
		Headers:     cycle.headers,
		RowsSeen:    len(cycle.rows),
		RowsSkipped: cycle.skipped,
	}, nil
}

// Assemble extracts every row in document order, dropping rows that do not
// yield a quote. The result is never nil.
func Assemble(rows [][]string, cols ColumnIndexMap) []models.Quote {
	quotes := make([]models.Quote, 0, len(rows))
	for _, row := range rows {
		if q, ok := Extract(row, cols); ok {
			quotes = append(quotes, q)
		}
	}
	return quotes
}
