package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/nepsewatch/internal/catalog"
	"github.com/bobmcallan/nepsewatch/internal/clients/merolagani"
	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/scraper"
	"github.com/bobmcallan/nepsewatch/internal/services/feed"
	"github.com/bobmcallan/nepsewatch/internal/services/portfolio"
	"github.com/bobmcallan/nepsewatch/internal/services/quote"
	"github.com/bobmcallan/nepsewatch/internal/storage/badger"
)

// App holds all initialized services, clients, and storage.
// It is the shared core behind cmd/nepsewatch-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Store            *badger.Store
	PortfolioStorage interfaces.PortfolioStorage
	MarketClient     interfaces.MarketPageClient
	QuoteService     interfaces.QuoteService
	Catalog          interfaces.SecurityCatalog
	FeedService      interfaces.FeedService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time

	feed       *feed.Feed
	feedCancel context.CancelFunc
	feedDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, NEPSEWATCH_CONFIG,
// nepsewatch.toml next to the binary, then config/nepsewatch.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("NEPSEWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "nepsewatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/nepsewatch.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads config and wires every service. configPath may be empty, in
// which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(getBinaryDir(), config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a, err := NewAppWithConfig(config, logger)
	if err != nil {
		return nil, err
	}
	a.StartupTime = startupStart

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// NewAppWithConfig wires services from an already-loaded config. Paths are
// used as given.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	store, err := badger.NewStoreFromConfig(config.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := merolagani.NewClientFromConfig(config.Market, logger)
	parser := scraper.NewParserFromConfig(config.Market)
	quoteService := quote.NewService(client, parser, logger)
	securities := catalog.Default()

	// No drifted prices in production.
	if config.IsProduction() && config.Feed.SimulateOnFailure {
		logger.Warn().Msg("feed.simulate_on_failure ignored in production")
		config.Feed.SimulateOnFailure = false
	}

	quoteFeed := feed.NewFromConfig(config.Feed, quoteService, securities, logger,
		feed.WithCache(badger.NewQuoteCacheStorage(store, logger)),
	)
	if err := quoteFeed.Restore(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Quote cache unreadable, starting empty")
	}

	portfolioStorage := badger.NewPortfolioStorage(store, logger)
	portfolioService := portfolio.NewService(portfolioStorage, quoteFeed, logger)

	logger.Debug().
		Str("market_url", client.URL()).
		Str("selector", parser.Selector()).
		Int("securities", securities.Len()).
		Msg("Services wired")

	return &App{
		Config:           config,
		Logger:           logger,
		Store:            store,
		PortfolioStorage: portfolioStorage,
		MarketClient:     client,
		QuoteService:     quoteService,
		Catalog:          securities,
		FeedService:      quoteFeed,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
		feed:             quoteFeed,
	}, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop the feed poller, then close storage.
func (a *App) Close() {
	a.StopFeedPoller()
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && a.Logger != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}
