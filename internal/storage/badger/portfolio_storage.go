package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

type portfolioStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStorage creates a new PortfolioStorage backed by BadgerHold.
func NewPortfolioStorage(store *Store, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{store: store, logger: logger}
}

func (s *portfolioStorage) GetRecord(_ context.Context, userID string) (*models.PortfolioRecord, error) {
	var record models.PortfolioRecord
	err := s.store.db.Get(userID, &record)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get portfolio for '%s': %w", userID, err)
	}
	return &record, nil
}

func (s *portfolioStorage) SaveProfiles(ctx context.Context, userID string, profiles []models.Profile) (*models.PortfolioRecord, error) {
	record, err := s.GetRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if record == nil {
		record = &models.PortfolioRecord{UserID: userID, CreatedAt: now}
	}
	record.Profiles = profiles
	record.UpdatedAt = now

	if err := s.store.db.Upsert(userID, record); err != nil {
		return nil, fmt.Errorf("failed to save portfolio for '%s': %w", userID, err)
	}
	s.logger.Debug().Str("user", userID).Int("profiles", len(profiles)).Msg("Portfolio saved")
	return record, nil
}

func (s *portfolioStorage) PutRecord(_ context.Context, record *models.PortfolioRecord) error {
	if record == nil || record.UserID == "" {
		return fmt.Errorf("portfolio record requires a user id")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if err := s.store.db.Upsert(record.UserID, record); err != nil {
		return fmt.Errorf("failed to put portfolio for '%s': %w", record.UserID, err)
	}
	return nil
}

func (s *portfolioStorage) DeleteRecord(_ context.Context, userID string) error {
	err := s.store.db.Delete(userID, models.PortfolioRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete portfolio for '%s': %w", userID, err)
	}
	s.logger.Debug().Str("user", userID).Msg("Portfolio deleted")
	return nil
}

func (s *portfolioStorage) ListUsers(_ context.Context) ([]string, error) {
	var records []models.PortfolioRecord
	if err := s.store.db.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	users := make([]string, len(records))
	for i, r := range records {
		users[i] = r.UserID
	}
	sort.Strings(users)
	return users, nil
}

var _ interfaces.PortfolioStorage = (*portfolioStorage)(nil)
