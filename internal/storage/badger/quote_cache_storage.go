package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

const quoteCacheKey = "latest"

// QuoteCacheEntry is the stored form of the last live quote set.
type QuoteCacheEntry struct {
	Key       string
	Quotes    []models.Quote
	UpdatedAt time.Time
}

type quoteCacheStorage struct {
	store  *Store
	logger *common.Logger
}

// NewQuoteCacheStorage creates a new QuoteCacheStorage backed by BadgerHold.
func NewQuoteCacheStorage(store *Store, logger *common.Logger) *quoteCacheStorage {
	return &quoteCacheStorage{store: store, logger: logger}
}

func (s *quoteCacheStorage) LoadQuotes(_ context.Context) (*models.FeedSnapshot, error) {
	var entry QuoteCacheEntry
	err := s.store.db.Get(quoteCacheKey, &entry)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load quote cache: %w", err)
	}
	if entry.Quotes == nil {
		entry.Quotes = []models.Quote{}
	}
	return &models.FeedSnapshot{
		Quotes:    entry.Quotes,
		UpdatedAt: entry.UpdatedAt,
	}, nil
}

func (s *quoteCacheStorage) SaveQuotes(_ context.Context, snapshot models.FeedSnapshot) error {
	entry := QuoteCacheEntry{
		Key:       quoteCacheKey,
		Quotes:    snapshot.Quotes,
		UpdatedAt: snapshot.UpdatedAt,
	}
	if err := s.store.db.Upsert(quoteCacheKey, &entry); err != nil {
		return fmt.Errorf("failed to save quote cache: %w", err)
	}
	s.logger.Trace().Int("quotes", len(snapshot.Quotes)).Msg("Quote cache saved")
	return nil
}

var _ interfaces.QuoteCacheStorage = (*quoteCacheStorage)(nil)
