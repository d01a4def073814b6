// Package models defines data structures for nepsewatch
package models

import "time"

// SectorUnknown is the sector reported by the scraper; the market page does
// not publish sectors, enrichment happens downstream.
const SectorUnknown = "Unknown"

// SectorOthers is assigned by the feed to symbols missing from the catalog.
const SectorOthers = "Others"

// Quote is a single security's price snapshot from one fetch cycle.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	CurrentPrice  float64 `json:"currentPrice"`  // last traded price
	PreviousPrice float64 `json:"previousPrice"` // published or derived previous close
	OpenPrice     float64 `json:"openPrice"`
	Sector        string  `json:"sector"`
}

// Change returns the absolute move from the previous price.
func (q Quote) Change() float64 {
	return q.CurrentPrice - q.PreviousPrice
}

// ChangePct returns the percentage move from the previous price, or 0 when
// the previous price is unknown.
func (q Quote) ChangePct() float64 {
	if q.PreviousPrice == 0 {
		return 0
	}
	return (q.CurrentPrice - q.PreviousPrice) / q.PreviousPrice * 100
}

// Feed status values
const (
	FeedStatusPending   = "pending"   // no cycle has succeeded yet
	FeedStatusLive      = "live"      // last cycle succeeded with quotes
	FeedStatusEmpty     = "empty"     // last cycle succeeded with no rows
	FeedStatusStale     = "stale"     // last cycle failed, serving last-known-good
	FeedStatusSimulated = "simulated" // last cycle failed, serving drifted prices
)

// FeedSnapshot is the consumer-side view of the quote feed: the last good
// quote set plus enough bookkeeping to tell live data from fallbacks.
type FeedSnapshot struct {
	Quotes      []Quote   `json:"quotes"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`   // last cycle that produced quotes
	LastAttempt time.Time `json:"lastAttempt,omitempty"` // last cycle, successful or not
	LastError   string    `json:"lastError,omitempty"`
	Cycles      int       `json:"cycles"`
	Failures    int       `json:"failures"`
}

// Lookup returns the quote for symbol from the snapshot.
func (s FeedSnapshot) Lookup(symbol string) (Quote, bool) {
	for _, q := range s.Quotes {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return Quote{}, false
}
