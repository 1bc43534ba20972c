package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"ss-scraper/models"
)

// CSVWriter exports normalized records to a CSV file, one column per
// persisted field except the store-assigned id.
type CSVWriter[T models.Record] struct {
	file   *os.File
	writer *csv.Writer
	header []string
}

var _ RecordExporter[models.Flat] = (*CSVWriter[models.Flat])(nil)

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter[T models.Record](path string, table Table[T]) (*CSVWriter[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := append([]string(nil), table.Columns...)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter[T]{file: f, writer: w, header: header}, nil
}

// Export appends one row per record. Missing numeric values are written as
// empty cells.
func (c *CSVWriter[T]) Export(records []T) error {
	for _, r := range records {
		row := make([]string, len(c.header))
		for i, col := range c.header {
			row[i] = r.Field(col)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter[T]) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
