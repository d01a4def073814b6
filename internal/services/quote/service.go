// Package quote runs the fetch → parse pipeline against the live market page.
package quote

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/models"
	"github.com/bobmcallan/nepsewatch/internal/scraper"
)

// sharedCycle is one coalesced fetch. Its context is cancelled once the
// last waiting caller has gone, which aborts the outbound request.
type sharedCycle struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Service implements QuoteService. Concurrent GetQuotes calls share one
// outbound request.
type Service struct {
	client interfaces.MarketPageClient
	parser *scraper.Parser
	logger *common.Logger
	group  singleflight.Group
	now    func() time.Time // injectable clock for testing

	mu       sync.Mutex
	inflight *sharedCycle
	seq      uint64
}

// NewService creates a new quote service. A nil parser uses the default
// selector and aliases.
func NewService(client interfaces.MarketPageClient, parser *scraper.Parser, logger *common.Logger) *Service {
	if parser == nil {
		parser = scraper.NewParser("", nil)
	}
	return &Service{
		client: client,
		parser: parser,
		logger: logger,
		now:    time.Now,
	}
}

// GetQuotes runs one cycle, or joins the cycle already in flight. Each
// caller gets its own slice.
func (s *Service) GetQuotes(ctx context.Context) ([]models.Quote, error) {
	c := s.join()
	defer s.leave(c)

	ch := s.group.DoChan(c.key, func() (interface{}, error) {
		res, err := s.Scrape(c.ctx)
		s.finish(c)
		if err != nil {
			return nil, err
		}
		return res.Quotes, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return slices.Clone(r.Val.([]models.Quote)), nil
	}
}

// join registers the caller on the cycle in flight, starting a new one when
// there is none. Each cycle gets its own singleflight key, so a cycle's fetch
// always runs under that cycle's context.
func (s *Service) join() *sharedCycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.seq++
		ctx, cancel := context.WithCancel(context.Background())
		s.inflight = &sharedCycle{
			key:    "latest-market-" + strconv.FormatUint(s.seq, 10),
			ctx:    ctx,
			cancel: cancel,
		}
	}
	s.inflight.waiters++
	return s.inflight
}

// leave drops the caller from c and cancels c when nobody is waiting.
func (s *Service) leave(c *sharedCycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.waiters--
	if c.waiters > 0 {
		return
	}
	c.cancel()
	if s.inflight == c {
		s.inflight = nil
	}
}

// finish stops new callers from joining c once its fetch has returned.
func (s *Service) finish(c *sharedCycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == c {
		s.inflight = nil
	}
}

// Scrape runs one uncoalesced cycle and returns the full parse result,
// including the resolved columns. Used by the CLI for alias tuning.
func (s *Service) Scrape(ctx context.Context) (*scraper.Result, error) {
	cycleID := uuid.New().String()[:8]
	start := s.now()

	html, err := s.client.FetchPage(ctx)
	if err != nil {
		s.logger.Warn().
			Str("cycle", cycleID).
			Str("url", s.client.URL()).
			Dur("elapsed", s.now().Sub(start)).
			Err(err).
			Msg("Market page fetch failed")
		return nil, err
	}

	res, err := s.parser.Parse(html)
	if err != nil {
		s.logger.Warn().
			Str("cycle", cycleID).
			Str("selector", s.parser.Selector()).
			Int("bytes", len(html)).
			Err(err).
			Msg("Market page parse failed")
		return nil, fmt.Errorf("parse %s: %w", s.client.URL(), err)
	}

	event := s.logger.Info()
	if len(res.Quotes) == 0 {
		event = s.logger.Warn()
	}
	event.
		Str("cycle", cycleID).
		Int("quotes", len(res.Quotes)).
		Int("rows", res.RowsSeen).
		Int("skipped", res.RowsSkipped).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Quote cycle complete")

	return res, nil
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
