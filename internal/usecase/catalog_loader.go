package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/retailmatch/backend/internal/domain"
)

// Catalog CSV column headers. Only ColumnAccountName is required.
const (
	ColumnAccountName = "Account Name"
	ColumnToken       = "Token"
	ColumnC1Category  = "C1 Brand Category"
	ColumnC2Category  = "C2 Brand Subcategory"
)

const utf8BOM = "\ufeff"

// CatalogLoader reads brand catalogs from delimited text
type CatalogLoader struct {
	normalizer *Normalizer
}

// NewCatalogLoader creates a loader that derives keys with the given normalizer
func NewCatalogLoader(normalizer *Normalizer) *CatalogLoader {
	if normalizer == nil {
		normalizer = NewNormalizer(false)
	}
	return &CatalogLoader{normalizer: normalizer}
}

// columnIndex records where each known column sits in the header, -1 when absent
type columnIndex struct {
	name, token, c1, c2 int
}

// LoadFile loads a catalog from a CSV file on disk.
// A missing file is reported as ErrCatalogSourceMissing.
func (l *CatalogLoader) LoadFile(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCatalogSourceMissing, path)
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return l.Load(f, filepath.Base(path))
}

// Load parses CSV from r into a catalog. The header must contain the exact
// "Account Name" column; otherwise ErrCatalogSchema is returned and no catalog
// is produced. Rows sharing a normalized name keep the last one.
func (l *CatalogLoader) Load(r io.Reader, source string) (*domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %q (empty file)", domain.ErrCatalogSchema, ColumnAccountName)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	cols := indexColumns(header)
	if cols.name < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrCatalogSchema, ColumnAccountName)
	}

	catalog := domain.NewCatalog(source)
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", rows+2, err)
		}
		rows++

		name := cell(record, cols.name)
		catalog.Put(l.normalizer.Normalize(name), domain.BrandRecord{
			BrandName:  name,
			Token:      cell(record, cols.token),
			C1Category: cell(record, cols.c1),
			C2Category: cell(record, cols.c2),
		})
	}

	log.Info().
		Str("source", source).
		Int("rows", rows).
		Int("brands", catalog.Len()).
		Msg("catalog loaded")

	return catalog, nil
}

func indexColumns(header []string) columnIndex {
	cols := columnIndex{name: -1, token: -1, c1: -1, c2: -1}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		// First occurrence wins when a header repeats.
		switch {
		case h == ColumnAccountName && cols.name < 0:
			cols.name = i
		case h == ColumnToken && cols.token < 0:
			cols.token = i
		case h == ColumnC1Category && cols.c1 < 0:
			cols.c1 = i
		case h == ColumnC2Category && cols.c2 < 0:
			cols.c2 = i
		}
	}
	return cols
}

// cell returns record[idx], or "" when the column is absent or the row is short
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
