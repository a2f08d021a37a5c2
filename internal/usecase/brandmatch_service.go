package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/metrics"
)

// BrandMatchServiceConfig holds configuration for the brand match service
type BrandMatchServiceConfig struct {
	CatalogTTL         time.Duration
	FilterStopWords    bool
	StopWords          []string
	FoldDiacritics     bool
	EnableDebugLogging bool
}

// BrandMatchService runs the catalog -> fetch -> normalize -> filter -> match pipeline
type BrandMatchService struct {
	catalogs   domain.CatalogRepository
	fetcher    domain.PageFetcher
	normalizer *Normalizer
	loader     *CatalogLoader
	stopWords  *StopWordFilter
	matcher    *MatchingService
	catalogTTL time.Duration

	mu             sync.RWMutex
	defaultCatalog *domain.Catalog
}

// NewBrandMatchService creates a new brand match service with dependencies
func NewBrandMatchService(
	catalogs domain.CatalogRepository,
	fetcher domain.PageFetcher,
	config BrandMatchServiceConfig,
) *BrandMatchService {
	normalizer := NewNormalizer(config.FoldDiacritics)

	var stopWords *StopWordFilter
	if config.FilterStopWords {
		stopWords = NewStopWordFilter(config.StopWords, config.EnableDebugLogging)
	}

	catalogTTL := config.CatalogTTL
	if catalogTTL == 0 {
		catalogTTL = time.Hour
	}

	return &BrandMatchService{
		catalogs:   catalogs,
		fetcher:    fetcher,
		normalizer: normalizer,
		loader:     NewCatalogLoader(normalizer),
		stopWords:  stopWords,
		matcher:    NewMatchingService(MatchConfig{EnableDebugLogging: config.EnableDebugLogging}),
		catalogTTL: catalogTTL,
	}
}

// LoadDefaultCatalog reads the preloaded catalog file and makes it the fallback
// for requests that do not name an uploaded catalog. On error the previous
// default, if any, is kept.
func (s *BrandMatchService) LoadDefaultCatalog(path string) (*domain.Catalog, error) {
	catalog, err := s.loader.LoadFile(path)
	metrics.CatalogsLoadedTotal.WithLabelValues("file", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.defaultCatalog = catalog
	s.mu.Unlock()

	return catalog, nil
}

// DefaultCatalog returns the preloaded catalog, or nil when none was loaded
func (s *BrandMatchService) DefaultCatalog() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultCatalog
}

// UploadCatalog parses an uploaded CSV and keeps it for the session TTL
func (s *BrandMatchService) UploadCatalog(ctx context.Context, r io.Reader, source string) (*domain.Catalog, error) {
	if r == nil {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.loader.Load(r, source)
	metrics.CatalogsLoadedTotal.WithLabelValues("upload", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	catalog.ID = uuid.NewString()
	if err := s.catalogs.Save(ctx, catalog, s.catalogTTL); err != nil {
		return nil, fmt.Errorf("store catalog: %w", err)
	}

	return catalog, nil
}

// MatchURL fetches the retailer page and returns the catalog brands found on it.
// A FetchError stops the pipeline before matching.
func (s *BrandMatchService) MatchURL(ctx context.Context, request *domain.MatchRequest) (*domain.MatchReport, error) {
	if request == nil || strings.TrimSpace(request.URL) == "" {
		return nil, domain.ErrInvalidRequest
	}

	catalog, err := s.resolveCatalog(ctx, request.CatalogID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := s.fetcher.Fetch(ctx, request.URL)
	metrics.PageFetchDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.PageFetchesTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("url", request.URL).Msg("retailer page fetch failed")
		return nil, err
	}

	metrics.PageTextElements.Observe(float64(len(page.Texts)))
	tokens := s.Tokenize(page.Texts)
	filtered := s.stopWords.Filter(tokens)

	keys, matches, err := s.matcher.Match(ctx, catalog, filtered)
	if err != nil {
		return nil, err
	}
	metrics.BrandMatchesFound.Observe(float64(len(matches)))

	report := &domain.MatchReport{
		URL:             page.URL,
		CatalogID:       catalog.ID,
		CatalogSize:     catalog.Len(),
		TextElements:    len(page.Texts),
		ExtractedTokens: tokens.Len(),
		FilteredTokens:  filtered.Len(),
		MatchedKeys:     keys,
		Matches:         matches,
	}

	log.Info().
		Str("url", report.URL).
		Int("catalog_size", report.CatalogSize).
		Int("extracted", report.ExtractedTokens).
		Int("matches", len(report.Matches)).
		Msg("retailer page matched")

	return report, nil
}

// Tokenize normalizes raw page text into a token set. Text that normalizes to
// nothing (pure punctuation, symbols) is dropped.
func (s *BrandMatchService) Tokenize(texts []string) domain.TokenSet {
	tokens := make(domain.TokenSet, len(texts))
	for _, text := range texts {
		if token := s.normalizer.Normalize(text); token != "" {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

func (s *BrandMatchService) resolveCatalog(ctx context.Context, id string) (*domain.Catalog, error) {
	if id == "" {
		if catalog := s.DefaultCatalog(); catalog != nil {
			return catalog, nil
		}
		return nil, domain.ErrCatalogSourceMissing
	}

	catalog, err := s.catalogs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, id)
		}
		return nil, err
	}
	return catalog, nil
}
