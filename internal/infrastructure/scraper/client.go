package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/ratelimit"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "retailmatch-bot/1.0"
	defaultMaxBodyBytes = 10 << 20
)

// Options configures page fetchers
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Burst             int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// Client fetches a single retailer page over HTTP and extracts its visible text.
// It never retries: a failed fetch is reported once as a *domain.FetchError.
type Client struct {
	httpClient *resty.Client
	opts       Options
	limiters   *ratelimit.Keyed
	debug      bool
}

// NewClient creates a new page client
func NewClient(opts Options) *Client {
	opts = opts.withDefaults()

	return &Client{
		httpClient: resty.New().
			SetDebug(false).
			SetTimeout(opts.Timeout).
			SetHeaders(map[string]string{
				"Accept":     "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8",
				"User-Agent": opts.UserAgent,
			}),
		opts:     opts,
		limiters: newHostLimiters(opts.RequestsPerSecond, opts.Burst),
	}
}

// SetDebug enables request/response dumps from the underlying HTTP client
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
	c.httpClient.SetDebug(debug)
}

// Fetch issues one GET for rawURL. Network failures, timeouts and non-2xx
// statuses come back as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	target, err := CanonicalURL(rawURL)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}

	// The limiter wait counts toward the fetch timeout.
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if err := c.limiters.Wait(ctx, hostKey(target)); err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	status := resp.StatusCode()
	if !isSuccess(status) {
		return nil, &domain.FetchError{
			URL:    target,
			Status: status,
			Err:    fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	data, err := io.ReadAll(io.LimitReader(body, c.opts.MaxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: target, Status: status, Err: fmt.Errorf("read body: %w", err)}
	}

	texts := []string{}
	if len(data) > 0 {
		reader, err := charset.NewReader(bytes.NewReader(data), resp.Header().Get("Content-Type"))
		if err != nil {
			return nil, &domain.FetchError{URL: target, Status: status, Err: fmt.Errorf("decode body: %w", err)}
		}
		if texts, err = ExtractVisibleText(reader); err != nil {
			return nil, &domain.FetchError{URL: target, Status: status, Err: fmt.Errorf("decode body: %w", err)}
		}
	}

	if c.debug {
		log.Debug().
			Str("url", target).
			Int("status", status).
			Int("texts", len(texts)).
			Dur("elapsed", time.Since(start)).
			Msg("page fetched")
	}

	return &domain.Page{URL: target, StatusCode: status, Texts: texts}, nil
}

// newHostLimiters spaces out requests to the same retailer host.
// A non-positive rate disables spacing.
func newHostLimiters(perSecond float64, burst int) *ratelimit.Keyed {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return ratelimit.NewKeyed(limit, burst, ratelimit.DefaultIdleTTL)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
