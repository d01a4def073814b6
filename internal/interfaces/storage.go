package interfaces

import (
	"context"

	"github.com/bobmcallan/nepsewatch/internal/models"
)

// PortfolioStorage persists one PortfolioRecord per user.
type PortfolioStorage interface {
	// GetRecord returns the user's record, or (nil, nil) when none exists.
	GetRecord(ctx context.Context, userID string) (*models.PortfolioRecord, error)

	// SaveProfiles replaces the user's profiles, creating the record if needed,
	// and returns the stored record. Other fields are left untouched.
	SaveProfiles(ctx context.Context, userID string, profiles []models.Profile) (*models.PortfolioRecord, error)

	// PutRecord stores a whole record as-is, for imports.
	PutRecord(ctx context.Context, record *models.PortfolioRecord) error

	// DeleteRecord removes the user's record. Missing records are not an error.
	DeleteRecord(ctx context.Context, userID string) error

	// ListUsers returns every user id with a stored record.
	ListUsers(ctx context.Context) ([]string, error)
}

// QuoteCacheStorage keeps the last live quote set across restarts.
type QuoteCacheStorage interface {
	// LoadQuotes returns the cached snapshot, or (nil, nil) when empty.
	LoadQuotes(ctx context.Context) (*models.FeedSnapshot, error)
	SaveQuotes(ctx context.Context, snapshot models.FeedSnapshot) error
}
