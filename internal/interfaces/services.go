package interfaces

import (
	"context"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

// QuoteService runs the fetch → locate → resolve → extract pipeline.
type QuoteService interface {
	// GetQuotes runs one fetch cycle. A nil error with an empty slice means the
	// page had no usable rows; failures are *merolagani.FetchError or
	// *scraper.ParseError.
	GetQuotes(ctx context.Context) ([]models.Quote, error)
}

// FeedService holds the last-known-good quote set refreshed on a schedule.
type FeedService interface {
	// Snapshot returns a copy of the current feed state.
	Snapshot() models.FeedSnapshot

	// Refresh runs one cycle now. Returns feed.ErrRefreshInProgress when a
	// cycle is already running.
	Refresh(ctx context.Context) error
}

// SecurityCatalog resolves static metadata for listed symbols.
type SecurityCatalog interface {
	Lookup(symbol string) (models.Security, bool)
	All() []models.Security
}

// PortfolioService manages per-user profiles and values them against the feed.
type PortfolioService interface {
	GetProfiles(ctx context.Context, userID string) ([]models.Profile, error)
	SaveProfiles(ctx context.Context, userID string, profiles []models.Profile) ([]models.Profile, error)
	Valuation(ctx context.Context, userID, profileID string) (*models.Valuation, error)
}
