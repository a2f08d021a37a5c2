package domain

import (
	"sort"
	"time"
)

// BrandRecord is one brand from the catalog. Optional columns default to "".
type BrandRecord struct {
	BrandName  string `json:"brandName"`
	Token      string `json:"token"`
	C1Category string `json:"c1Category"`
	C2Category string `json:"c2Category"`
}

// Catalog maps normalized brand keys to brand records.
// It is built once by the loader and treated as read-only afterwards.
type Catalog struct {
	ID       string                 `json:"id"`
	Source   string                 `json:"source"`
	LoadedAt time.Time              `json:"loadedAt"`
	Brands   map[string]BrandRecord `json:"-"`
}

// NewCatalog creates an empty catalog for the given source name
func NewCatalog(source string) *Catalog {
	return &Catalog{
		Source:   source,
		LoadedAt: time.Now(),
		Brands:   make(map[string]BrandRecord),
	}
}

// Put stores a record under key. A later record with the same key replaces the earlier one.
func (c *Catalog) Put(key string, record BrandRecord) {
	c.Brands[key] = record
}

// Lookup returns the record stored under key
func (c *Catalog) Lookup(key string) (BrandRecord, bool) {
	record, ok := c.Brands[key]
	return record, ok
}

// Len returns the number of distinct keys in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Brands)
}

// Keys returns the catalog keys in ascending order
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Brands))
	for key := range c.Brands {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
