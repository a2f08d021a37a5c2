package domain

import (
	"context"
	"time"
)

// CatalogRepository keeps uploaded catalogs for the duration of a session
type CatalogRepository interface {
	Get(ctx context.Context, id string) (*Catalog, error)
	Save(ctx context.Context, catalog *Catalog, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// PageFetcher retrieves a single page and returns its visible text
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}
