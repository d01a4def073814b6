// Package interfaces defines service contracts for nepsewatch
package interfaces

import "context"

// MarketPageClient retrieves the raw HTML of the live market page.
type MarketPageClient interface {
	// FetchPage performs one GET against the configured page and returns the
	// body. Failures are reported as *merolagani.FetchError.
	FetchPage(ctx context.Context) (string, error)

	// URL returns the page being fetched, for logging.
	URL() string
}
