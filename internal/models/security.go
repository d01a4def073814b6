package models

// Security is static metadata for a listed company.
type Security struct {
	Symbol string `json:"symbol" toml:"symbol"`
	Name   string `json:"name" toml:"name"`
	Sector string `json:"sector" toml:"sector"`
}
