package models

import "time"

// Default profile used when a stored record only has the legacy flat stock list.
const (
	DefaultProfileID   = "default"
	DefaultProfileName = "Main Portfolio"
	AllProfiles        = "all"
)

// Holding is one position inside a profile.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Note     string  `json:"note"`
}

// Profile groups holdings under a user-chosen name.
type Profile struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Stocks []Holding `json:"stocks"`
}

// PortfolioRecord is the stored document for one user. Stocks is the
// pre-profiles format and is only read, never written.
type PortfolioRecord struct {
	UserID    string    `json:"userId"`
	Profiles  []Profile `json:"profiles"`
	Stocks    []Holding `json:"stocks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValuationLine is a holding joined with its latest quote.
type ValuationLine struct {
	ProfileID     string  `json:"profileId"`
	ProfileName   string  `json:"profileName"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Note          string  `json:"note"`
	Quantity      float64 `json:"quantity"`
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousPrice float64 `json:"previousPrice"`
	Value         float64 `json:"value"`
	DailyChange   float64 `json:"dailyChange"`
	ChangePct     float64 `json:"changePct"`
	UpperCircuit  bool    `json:"upperCircuit"`
	LowerCircuit  bool    `json:"lowerCircuit"`
	Significant   bool    `json:"significant"`
	Priced        bool    `json:"priced"`
}

// Valuation totals a profile (or all profiles) against the feed.
type Valuation struct {
	UserID      string          `json:"userId"`
	ProfileID   string          `json:"profileId"`
	Lines       []ValuationLine `json:"lines"`
	TotalValue  float64         `json:"totalValue"`
	DailyChange float64         `json:"dailyChange"`
	Positive    bool            `json:"positive"`
	FeedStatus  string          `json:"feedStatus"`
	PricedAt    time.Time       `json:"pricedAt,omitempty"`
}
