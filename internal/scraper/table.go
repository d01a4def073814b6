package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTableSelector matches the live trading table on merolagani's Latest
// Market page.
const DefaultTableSelector = "table.table-hover"

// Locator finds the live-quote table inside a parsed document. It is the only
// place that knows the page's markup signature.
type Locator struct {
	Selector string
}

// NewLocator returns a locator for selector, falling back to the default.
func NewLocator(selector string) Locator {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultTableSelector
	}
	return Locator{Selector: selector}
}

// Locate returns the first element matching the selector.
func (l Locator) Locate(doc *goquery.Document) (*goquery.Selection, error) {
	table := doc.Find(l.Selector).First()
	if table.Length() == 0 {
		return nil, &ParseError{Selector: l.Selector, Err: ErrTableNotFound}
	}
	return table, nil
}

// tableLayout splits a located table into header texts and body rows.
//
// Headers come from "thead tr th". Tables without a thead use the first row
// carrying th cells as the header and every later row as body. Body rows are
// rows with at least one td; anything else (spacers, repeated headers) is
// dropped here.
func tableLayout(table *goquery.Selection) (headers []string, rows [][]string) {
	headerCells := table.Find("thead tr").First().Find("th")
	bodyRows := table.Find("tbody tr")

	if headerCells.Length() == 0 {
		var headerRow *goquery.Selection
		table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if tr.Children().Filter("th").Length() > 0 {
				headerRow = tr
				return false
			}
			return true
		})
		if headerRow != nil {
			headerCells = headerRow.Children().Filter("th")
			bodyRows = headerRow.NextAll().Filter("tr")
		}
	}

	headerCells.Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	bodyRows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Children().Filter("td")
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		rows = append(rows, row)
	})

	return headers, rows
}
