package storage

import (
	"context"

	"ss-scraper/models"
)

// RecordStore is the interface any storage backend must satisfy. A store
// holds the complete record table of one category.
type RecordStore[T models.Record] interface {
	// Load returns every stored record in insertion order.
	Load(ctx context.Context) ([]T, error)
	// Save replaces the stored table with records, all or nothing.
	Save(ctx context.Context, records []T) error
}

// RecordExporter writes a category's records to a flat file.
type RecordExporter[T models.Record] interface {
	Export(records []T) error
	Close() error
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}
