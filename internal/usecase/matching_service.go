package usecase

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/internal/domain"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableDebugLogging bool
}

// MatchingService finds catalog brands whose key appears verbatim among page tokens
type MatchingService struct {
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig) *MatchingService {
	return &MatchingService{
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Match intersects the catalog keys with tokens. Keys come back in ascending
// order with the brand record for each key at the same index. An empty
// intersection is not an error.
func (s *MatchingService) Match(
	ctx context.Context,
	catalog *domain.Catalog,
	tokens domain.TokenSet,
) ([]string, []domain.BrandRecord, error) {
	if catalog == nil {
		return nil, nil, domain.ErrCatalogSourceMissing
	}

	// Walk whichever side is smaller; both are plain hash sets.
	keys := make([]string, 0)
	if len(tokens) < catalog.Len() {
		for token := range tokens {
			if _, ok := catalog.Lookup(token); ok {
				keys = append(keys, token)
			}
		}
	} else {
		for key := range catalog.Brands {
			if tokens.Contains(key) {
				keys = append(keys, key)
			}
		}
	}

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	sort.Strings(keys)

	records := make([]domain.BrandRecord, 0, len(keys))
	for _, key := range keys {
		record, _ := catalog.Lookup(key)
		records = append(records, record)
	}

	if s.enableDebugLogging {
		log.Debug().
			Int("catalog_size", catalog.Len()).
			Int("tokens", len(tokens)).
			Strs("matched", keys).
			Msg("catalog matched against page tokens")
	}

	return keys, records, nil
}
