package usecase

import (
	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/internal/domain"
)

// DefaultStopWords are navigation and boilerplate labels that show up on most
// retailer pages and would otherwise collide with short brand names.
var DefaultStopWords = []string{
	"the", "home", "search", "about", "info", "contact", "shop", "new", "brands",
	"collections", "faq", "policies", "support", "login", "sign", "account",
}

// StopWordFilter removes generic page tokens before matching
type StopWordFilter struct {
	stopWords          map[string]bool
	enableDebugLogging bool
}

// NewStopWordFilter creates a filter for the given words. Words are normalized
// so that configured values like "Home" still match page tokens.
func NewStopWordFilter(words []string, enableDebugLogging bool) *StopWordFilter {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if key := Normalize(w); key != "" {
			set[key] = true
		}
	}

	return &StopWordFilter{
		stopWords:          set,
		enableDebugLogging: enableDebugLogging,
	}
}

// IsStopWord reports whether token is one of the configured stop words
func (f *StopWordFilter) IsStopWord(token string) bool {
	if f == nil {
		return false
	}
	return f.stopWords[token]
}

// Len returns the number of configured stop words
func (f *StopWordFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.stopWords)
}

// Filter returns a new set without stop words. A nil filter passes tokens through unchanged.
func (f *StopWordFilter) Filter(tokens domain.TokenSet) domain.TokenSet {
	if f == nil || len(f.stopWords) == 0 {
		return tokens
	}

	kept := make(domain.TokenSet, len(tokens))
	for token := range tokens {
		if f.stopWords[token] {
			continue
		}
		kept[token] = struct{}{}
	}

	if f.enableDebugLogging {
		log.Debug().
			Int("before", len(tokens)).
			Int("after", len(kept)).
			Msg("stop words filtered")
	}

	return kept
}
