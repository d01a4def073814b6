// Package feed keeps a last-known-good quote set refreshed on a schedule.
package feed

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
	"github.com/bobmcallan/nepsewatch/internal/scraper"
)

// ErrRefreshInProgress is returned by Refresh when a cycle is already running.
var ErrRefreshInProgress = errors.New("feed refresh already in progress")

const (
	DefaultInterval = 10 * time.Second

	// Drift applied to held quotes when simulation is on and a cycle fails.
	driftProbability = 0.7
	driftVolatility  = 0.005
)

// Feed polls a QuoteService and serves the enriched result.
type Feed struct {
	source   interfaces.QuoteService
	catalog  interfaces.SecurityCatalog
	logger   *common.Logger
	interval time.Duration
	simulate bool
	rng      *rand.Rand
	now      func() time.Time
	cache    interfaces.QuoteCacheStorage

	busy atomic.Bool
	wg   sync.WaitGroup

	mu   sync.RWMutex
	snap models.FeedSnapshot
}

// Option configures the feed
type Option func(*Feed)

// WithInterval sets the polling interval
func WithInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithSimulation enables price drift on failed cycles
func WithSimulation(enabled bool) Option {
	return func(f *Feed) {
		f.simulate = enabled
	}
}

// WithRand sets the random source used for drift
func WithRand(r *rand.Rand) Option {
	return func(f *Feed) {
		f.rng = r
	}
}

// WithCache persists each live quote set so a restart can serve it before
// the first cycle completes.
func WithCache(cache interfaces.QuoteCacheStorage) Option {
	return func(f *Feed) {
		f.cache = cache
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(f *Feed) {
		f.now = now
	}
}

// New creates a feed. catalog may be nil, in which case every quote gets
// the "Others" sector.
func New(source interfaces.QuoteService, catalog interfaces.SecurityCatalog, logger *common.Logger, opts ...Option) *Feed {
	f := &Feed{
		source:   source,
		catalog:  catalog,
		logger:   logger,
		interval: DefaultInterval,
		now:      time.Now,
		snap: models.FeedSnapshot{
			Quotes: []models.Quote{},
			Status: models.FeedStatusPending,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return f
}

// NewFromConfig creates a feed from the [feed] config section.
func NewFromConfig(cfg common.FeedConfig, source interfaces.QuoteService, catalog interfaces.SecurityCatalog, logger *common.Logger, opts ...Option) *Feed {
	base := []Option{
		WithInterval(cfg.GetInterval()),
		WithSimulation(cfg.SimulateOnFailure),
	}
	return New(source, catalog, logger, append(base, opts...)...)
}

// Restore seeds a pending feed from the cache. Restored quotes are served
// as stale until a live cycle replaces them.
func (f *Feed) Restore(ctx context.Context) error {
	if f.cache == nil {
		return nil
	}
	cached, err := f.cache.LoadQuotes(ctx)
	if err != nil {
		return err
	}
	if cached == nil || len(cached.Quotes) == 0 {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snap.Status != models.FeedStatusPending {
		return nil
	}
	f.snap.Quotes = slices.Clone(cached.Quotes)
	f.snap.UpdatedAt = cached.UpdatedAt
	f.snap.Status = models.FeedStatusStale

	f.logger.Info().
		Int("quotes", len(cached.Quotes)).
		Time("updated_at", cached.UpdatedAt).
		Msg("Feed restored from cache")
	return nil
}

// Interval returns the polling interval.
func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Run refreshes immediately and then on every tick until ctx is done. Ticks
// that land while a cycle is still running are skipped. Run returns once the
// last in-flight cycle has finished.
func (f *Feed) Run(ctx context.Context) {
	f.logger.Info().Dur("interval", f.interval).Msg("Feed poller: started")

	f.tick(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.wg.Wait()
			f.logger.Info().Msg("Feed poller: stopped")
			return
		case <-ticker.C:
			f.tick(ctx)
		}
	}
}

func (f *Feed) tick(ctx context.Context) {
	if !f.busy.CompareAndSwap(false, true) {
		f.logger.Debug().Msg("Feed poller: previous cycle still running, tick skipped")
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.busy.Store(false)
		_ = f.cycle(ctx)
	}()
}

// Refresh runs one cycle now and returns its error.
func (f *Feed) Refresh(ctx context.Context) error {
	if !f.busy.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer f.busy.Store(false)
	return f.cycle(ctx)
}

// Snapshot returns a copy of the current feed state.
func (f *Feed) Snapshot() models.FeedSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snap := f.snap
	snap.Quotes = slices.Clone(f.snap.Quotes)
	if snap.Quotes == nil {
		snap.Quotes = []models.Quote{}
	}
	return snap
}

func (f *Feed) cycle(ctx context.Context) error {
	quotes, err := f.source.GetQuotes(ctx)
	if err != nil && ctx.Err() != nil {
		// Abandoned by the caller or by shutdown; says nothing about the market.
		f.logger.Debug().Err(err).Msg("Feed cycle cancelled")
		return err
	}
	now := f.now()

	f.mu.Lock()
	live := f.record(quotes, err, now)
	f.mu.Unlock()

	if live != nil && f.cache != nil {
		if cerr := f.cache.SaveQuotes(ctx, *live); cerr != nil {
			f.logger.Warn().Err(cerr).Msg("Failed to save quote cache")
		}
	}
	return err
}

// record applies one cycle's outcome and returns a copy of the snapshot when
// the cycle produced quotes. Caller holds mu.
func (f *Feed) record(quotes []models.Quote, err error, now time.Time) *models.FeedSnapshot {
	f.snap.Cycles++
	f.snap.LastAttempt = now

	if err != nil {
		f.snap.Failures++
		f.snap.LastError = err.Error()
		f.fail()
		f.logger.Warn().
			Err(err).
			Str("status", f.snap.Status).
			Int("held", len(f.snap.Quotes)).
			Msg("Feed cycle failed")
		return nil
	}

	f.snap.LastError = ""
	if len(quotes) == 0 {
		// Keep showing what we had; the page sometimes serves an empty table.
		f.snap.Status = models.FeedStatusEmpty
		f.logger.Warn().Int("held", len(f.snap.Quotes)).Msg("Feed cycle returned no quotes")
		return nil
	}

	f.snap.Quotes = f.enrich(quotes)
	f.snap.Status = models.FeedStatusLive
	f.snap.UpdatedAt = now
	f.logger.Debug().Int("quotes", len(quotes)).Msg("Feed updated")

	live := f.snap
	live.Quotes = slices.Clone(f.snap.Quotes)
	return &live
}

// fail settles the status after a failed cycle. Caller holds mu.
func (f *Feed) fail() {
	if f.snap.Status == models.FeedStatusPending && len(f.snap.Quotes) == 0 {
		return
	}
	if f.simulate && len(f.snap.Quotes) > 0 {
		f.drift()
		f.snap.Status = models.FeedStatusSimulated
		return
	}
	f.snap.Status = models.FeedStatusStale
}

// drift nudges each held price by up to ±0.5%. Caller holds mu.
func (f *Feed) drift() {
	for i := range f.snap.Quotes {
		if f.rng.Float64() >= driftProbability {
			continue
		}
		q := &f.snap.Quotes[i]
		change := q.CurrentPrice * (f.rng.Float64()*driftVolatility*2 - driftVolatility)
		q.CurrentPrice = scraper.Round2(q.CurrentPrice + change)
	}
}

// enrich fills name and sector from the catalog. The input is not modified.
func (f *Feed) enrich(quotes []models.Quote) []models.Quote {
	out := make([]models.Quote, len(quotes))
	for i, q := range quotes {
		q.Sector = models.SectorOthers
		if f.catalog != nil {
			if sec, ok := f.catalog.Lookup(q.Symbol); ok {
				if sec.Name != "" {
					q.Name = sec.Name
				}
				if sec.Sector != "" {
					q.Sector = sec.Sector
				}
			}
		}
		if q.Name == "" {
			q.Name = q.Symbol
		}
		out[i] = q
	}
	return out
}

// Ensure Feed implements FeedService
var _ interfaces.FeedService = (*Feed)(nil)
