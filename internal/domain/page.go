package domain

import "sort"

// Page holds the visible text fetched from a single retailer URL
type Page struct {
	URL        string
	StatusCode int
	// Texts are the trimmed, non-empty visible text nodes in document order.
	Texts []string
}

// TokenSet is a set of normalized tokens
type TokenSet map[string]struct{}

// NewTokenSet builds a set from the given tokens
func NewTokenSet(tokens ...string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Contains reports whether token is in the set
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the number of tokens in the set
func (s TokenSet) Len() int {
	return len(s)
}

// Sorted returns the tokens in ascending order
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MatchReport is the outcome of matching one catalog against one page
type MatchReport struct {
	URL             string        `json:"url"`
	CatalogID       string        `json:"catalogId,omitempty"`
	CatalogSize     int           `json:"catalogSize"`
	TextElements    int           `json:"textElements"`
	ExtractedTokens int           `json:"extractedTokens"`
	FilteredTokens  int           `json:"filteredTokens"`
	MatchedKeys     []string      `json:"matchedKeys"`
	Matches         []BrandRecord `json:"matches"`
}

// HasMatches reports whether any brand was found on the page
func (r *MatchReport) HasMatches() bool {
	return r != nil && len(r.Matches) > 0
}

// MatchRequest asks for the catalog brands carried on a retailer page.
// An empty CatalogID selects the preloaded catalog.
type MatchRequest struct {
	URL       string `json:"url" binding:"required"`
	CatalogID string `json:"catalogId,omitempty"`
}
