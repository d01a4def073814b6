// Package catalog holds static metadata for NEPSE-listed securities.
//
// The live page only publishes symbols; company names and sectors come from
// here. The embedded list is TOML so it can be edited without touching code.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

//go:embed securities.toml
var embedded []byte

type catalogFile struct {
	Securities []models.Security `toml:"securities"`
}

// Catalog is an immutable symbol → security index.
type Catalog struct {
	bySymbol map[string]models.Security
	ordered  []models.Security
}

// Default returns the catalog built from the embedded list.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded securities.toml: %v", err))
	}
	return c
}

// Parse builds a catalog from TOML with a [[securities]] array. Entries
// without a symbol are ignored; for repeated symbols the first entry wins.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse securities: %w", err)
	}
	return New(f.Securities), nil
}

// New indexes the given securities.
func New(securities []models.Security) *Catalog {
	c := &Catalog{bySymbol: make(map[string]models.Security, len(securities))}
	for _, s := range securities {
		s.Symbol = normalizeSymbol(s.Symbol)
		if s.Symbol == "" {
			continue
		}
		if _, dup := c.bySymbol[s.Symbol]; dup {
			continue
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Sector = strings.TrimSpace(s.Sector)
		c.bySymbol[s.Symbol] = s
		c.ordered = append(c.ordered, s)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		return c.ordered[i].Symbol < c.ordered[j].Symbol
	})
	return c
}

// Lookup finds a security by symbol, case-insensitively.
func (c *Catalog) Lookup(symbol string) (models.Security, bool) {
	s, ok := c.bySymbol[normalizeSymbol(symbol)]
	return s, ok
}

// All returns every security sorted by symbol.
func (c *Catalog) All() []models.Security {
	out := make([]models.Security, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len is the number of distinct symbols.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var _ interfaces.SecurityCatalog = (*Catalog)(nil)
