// Package portfolio manages per-user holding profiles and values them
// against the live feed.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

var (
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProfileNotFound is returned when a valuation names an unknown profile.
	ErrProfileNotFound = errors.New("profile not found")
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.PortfolioStorage
	feed    interfaces.FeedService
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.PortfolioStorage, feed interfaces.FeedService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		feed:    feed,
		logger:  logger,
	}
}

// GetProfiles returns the user's profiles. Records that predate profiles
// have their flat stock list presented as a single default profile. A user
// with no record gets an empty slice.
func (s *Service) GetProfiles(ctx context.Context, userID string) ([]models.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	record, err := s.storage.GetRecord(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return profilesOf(record), nil
}

func profilesOf(record *models.PortfolioRecord) []models.Profile {
	if record == nil {
		return []models.Profile{}
	}
	if len(record.Profiles) > 0 {
		return record.Profiles
	}
	if len(record.Stocks) > 0 {
		return []models.Profile{{
			ID:     models.DefaultProfileID,
			Name:   models.DefaultProfileName,
			Stocks: record.Stocks,
		}}
	}
	return []models.Profile{}
}

// SaveProfiles validates and normalises profiles, then replaces the stored
// set. It returns the profiles as stored.
func (s *Service) SaveProfiles(ctx context.Context, userID string, profiles []models.Profile) ([]models.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	clean, err := normalizeProfiles(profiles)
	if err != nil {
		return nil, err
	}

	record, err := s.storage.SaveProfiles(ctx, userID, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("user", userID).
		Int("profiles", len(clean)).
		Msg("Portfolio profiles saved")

	if record.Profiles == nil {
		return []models.Profile{}, nil
	}
	return record.Profiles, nil
}

func normalizeProfiles(profiles []models.Profile) ([]models.Profile, error) {
	out := make([]models.Profile, 0, len(profiles))
	seen := make(map[string]bool, len(profiles))

	for i, p := range profiles {
		id := strings.TrimSpace(p.ID)
		name := strings.TrimSpace(p.Name)
		switch {
		case id == "":
			return nil, fmt.Errorf("%w: profile %d has no id", ErrInvalidInput, i)
		case strings.EqualFold(id, models.AllProfiles):
			return nil, fmt.Errorf("%w: profile id %q is reserved", ErrInvalidInput, id)
		case seen[id]:
			return nil, fmt.Errorf("%w: duplicate profile id %q", ErrInvalidInput, id)
		case name == "":
			return nil, fmt.Errorf("%w: profile %q has no name", ErrInvalidInput, id)
		}
		seen[id] = true

		stocks := make([]models.Holding, 0, len(p.Stocks))
		for _, h := range p.Stocks {
			symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
			if symbol == "" {
				return nil, fmt.Errorf("%w: profile %q has a holding without a symbol", ErrInvalidInput, id)
			}
			if h.Quantity < 0 || math.IsNaN(h.Quantity) || math.IsInf(h.Quantity, 0) {
				return nil, fmt.Errorf("%w: %s quantity must be a non-negative number", ErrInvalidInput, symbol)
			}
			stocks = append(stocks, models.Holding{
				Symbol:   symbol,
				Quantity: h.Quantity,
				Note:     strings.TrimSpace(h.Note),
			})
		}

		out = append(out, models.Profile{ID: id, Name: name, Stocks: stocks})
	}
	return out, nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
