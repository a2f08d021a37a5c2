package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gocolly/colly/v2"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/ratelimit"
)

// CollyFetcher fetches pages through a Colly collector, honoring robots.txt.
// Like Client it performs a single attempt per call.
type CollyFetcher struct {
	opts     Options
	limiters *ratelimit.Keyed
}

// NewCollyFetcher creates a robots-aware page fetcher
func NewCollyFetcher(opts Options) *CollyFetcher {
	opts = opts.withDefaults()
	return &CollyFetcher{
		opts:     opts,
		limiters: newHostLimiters(opts.RequestsPerSecond, opts.Burst),
	}
}

// Fetch visits rawURL once and extracts its visible text
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	target, err := CanonicalURL(rawURL)
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Err: err}
	}

	// The limiter wait counts toward the fetch timeout.
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	if err := f.limiters.Wait(ctx, hostKey(target)); err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}

	var (
		page   *domain.Page
		status int
		reqErr error
	)

	c := f.newCollector(ctx)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		if !isSuccess(status) {
			reqErr = fmt.Errorf("unexpected status %d %s", status, http.StatusText(status))
			return
		}
		texts, err := ExtractVisibleText(bytes.NewReader(r.Body))
		if err != nil {
			reqErr = err
			return
		}
		page = &domain.Page{URL: target, StatusCode: status, Texts: texts}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	if err := c.Visit(target); err != nil {
		return nil, &domain.FetchError{URL: target, Status: status, Err: err}
	}
	if reqErr != nil {
		return nil, &domain.FetchError{URL: target, Status: status, Err: reqErr}
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}
	if page == nil {
		return nil, &domain.FetchError{URL: target, Status: status, Err: errors.New("no response received")}
	}

	return page, nil
}

// newCollector builds a single-use collector. Non-2xx responses reach
// OnResponse so both engines classify statuses the same way.
func (f *CollyFetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(int(f.opts.MaxBodyBytes)),
		colly.StdlibContext(ctx),
		colly.ParseHTTPErrorResponse(),
	)
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.opts.Timeout)
	return c
}
