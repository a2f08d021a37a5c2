package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/retailmatch/backend/internal/domain"
)

// FileName is the download name used for match exports
const FileName = "matched_brands_from_retailer.csv"

// Column headers, in export order
const (
	ColumnBrandName  = "Brand Name"
	ColumnToken      = "Token"
	ColumnC1Category = "C1 Category"
	ColumnC2Category = "C2 Category"
)

// Columns returns the header row shared by every export
func Columns() []string {
	return []string{ColumnBrandName, ColumnToken, ColumnC1Category, ColumnC2Category}
}

// Row maps a brand record to a row in Columns order
func Row(record domain.BrandRecord) []string {
	return []string{record.BrandName, record.Token, record.C1Category, record.C2Category}
}

// Table is the tabular view of matched brands
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a table with one row per record, preserving order
func NewTable(records []domain.BrandRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row(r))
	}
	return Table{Columns: Columns(), Rows: rows}
}

// WriteCSV writes the header and one line per record. No index column is added.
func WriteCSV(w io.Writer, records []domain.BrandRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(Row(r)); err != nil {
			return fmt.Errorf("write row %q: %w", r.BrandName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable renders records as an aligned plain-text table for terminals
func WriteTable(w io.Writer, records []domain.BrandRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(Columns(), "\t"))
	for _, r := range records {
		fmt.Fprintln(tw, strings.Join(Row(r), "\t"))
	}
	return tw.Flush()
}
