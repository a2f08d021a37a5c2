package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogSchema is returned when the catalog source lacks the required brand name column
	ErrCatalogSchema = errors.New("catalog is missing a required column")

	// ErrCatalogSourceMissing is returned when no catalog was uploaded and no preloaded catalog exists
	ErrCatalogSourceMissing = errors.New("no brand catalog available")

	// ErrCatalogNotFound is returned when an uploaded catalog id is unknown or expired
	ErrCatalogNotFound = errors.New("catalog not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in the session store
	ErrCacheMiss = errors.New("cache miss")
)

// FetchError reports a failed page fetch: network failure, timeout or non-success status.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
