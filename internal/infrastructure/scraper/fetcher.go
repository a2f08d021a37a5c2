package scraper

import (
	"fmt"

	"github.com/retailmatch/backend/internal/domain"
)

// Fetch engines
const (
	EngineHTTP  = "http"
	EngineColly = "colly"
)

// NewFetcher returns the page fetcher for the named engine
func NewFetcher(engine string, opts Options) (domain.PageFetcher, error) {
	switch engine {
	case EngineHTTP, "":
		return NewClient(opts), nil
	case EngineColly:
		return NewCollyFetcher(opts), nil
	default:
		return nil, fmt.Errorf("unknown fetch engine %q", engine)
	}
}
