package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

type importPortfoliosFile struct {
	Portfolios []importPortfolio `json:"portfolios"`
}

// importPortfolio accepts both the profile format and the older flat list.
type importPortfolio struct {
	UserID   string           `json:"userId"`
	Profiles []models.Profile `json:"profiles"`
	Stocks   []models.Holding `json:"stocks"`
}

// ImportPortfoliosFromFile reads a portfolios JSON file and stores each
// record as-is, legacy stock lists included. Users that already have a record
// are skipped. Returns (imported count, skipped count, error).
func ImportPortfoliosFromFile(ctx context.Context, store interfaces.PortfolioStorage, logger *common.Logger, filePath string) (int, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read portfolios file %s: %w", filePath, err)
	}

	var file importPortfoliosFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse portfolios file %s: %w", filePath, err)
	}

	imported, skipped := 0, 0
	for _, p := range file.Portfolios {
		userID := strings.TrimSpace(p.UserID)
		if userID == "" {
			skipped++
			continue
		}
		// Skip if exists
		if existing, err := store.GetRecord(ctx, userID); err != nil || existing != nil {
			skipped++
			continue
		}
		record := &models.PortfolioRecord{
			UserID:   userID,
			Profiles: p.Profiles,
			Stocks:   p.Stocks,
		}
		if err := store.PutRecord(ctx, record); err != nil {
			logger.Warn().Err(err).Str("user", userID).Msg("Failed to save portfolio during import")
			skipped++
			continue
		}
		imported++
	}

	logger.Info().
		Int("imported", imported).
		Int("skipped", skipped).
		Str("file", filePath).
		Msg("Portfolio import complete")

	return imported, skipped, nil
}
