// Package merolagani fetches the merolagani.com Latest Market page.
package merolagani

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
)

const (
	DefaultURL          = "https://merolagani.com/LatestMarket.aspx"
	DefaultTimeout      = 15 * time.Second
	DefaultRateLimit    = 2 // requests per second
	DefaultMaxBodyBytes = 10 << 20
)

// FetchError reports any failure reaching the market page: transport errors,
// timeouts, TLS/DNS problems, non-2xx statuses and oversized bodies.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrBodyTooLarge is wrapped by FetchError when the page exceeds the size cap.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Client implements MarketPageClient over net/http.
type Client struct {
	url          string
	httpClient   *http.Client
	headers      http.Header
	maxBodyBytes int64
	logger       *common.Logger
	limiter      *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithURL sets the page URL
func WithURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithUserAgent overrides the browser identification string
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.headers.Set("User-Agent", ua)
		}
	}
}

// WithHeaders adds extra outbound headers; values replace existing ones.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers.Set(k, v)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the outbound rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMaxBodyBytes caps how much of the page is read
func WithMaxBodyBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a market page client. No API key is required.
func NewClient(opts ...ClientOption) *Client {
	headers := http.Header{}
	headers.Set("User-Agent", common.DefaultUserAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml")

	c := &Client{
		url: DefaultURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		headers:      headers,
		maxBodyBytes: DefaultMaxBodyBytes,
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:       common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig builds a client from the [market] config section.
func NewClientFromConfig(cfg common.MarketConfig, logger *common.Logger) *Client {
	return NewClient(
		WithURL(cfg.URL),
		WithUserAgent(cfg.UserAgent),
		WithHeaders(cfg.Headers),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
		WithMaxBodyBytes(cfg.MaxBodyBytes),
		WithLogger(logger),
	)
}

// URL returns the page being fetched.
func (c *Client) URL() string {
	return c.url
}

// FetchPage performs a single GET against the market page. There is no retry
// here; the caller decides what a failed cycle means.
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: c.url, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &FetchError{URL: c.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header = c.headers.Clone()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.url).Dur("elapsed", elapsed).Msg("Market page request failed")
		return "", &FetchError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().Str("url", c.url).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Market page non-OK response")
		// drain a little so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return "", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return "", &FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: ErrBodyTooLarge}
	}

	c.logger.Debug().Str("url", c.url).Int("status", resp.StatusCode).Int("bytes", len(body)).Dur("elapsed", elapsed).Msg("Market page fetched")

	return string(body), nil
}

// Ensure Client implements MarketPageClient
var _ interfaces.MarketPageClient = (*Client)(nil)
