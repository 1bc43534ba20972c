package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ss-scraper/models"
)

const batchSize = 50

var (
	_ RecordStore[models.Flat] = (*SQLStore[models.Flat])(nil)
	_ RecordStore[models.Car]  = (*SQLStore[models.Car])(nil)
)

// SQLStore persists one category's records in a SQL table.
type SQLStore[T models.Record] struct {
	db    *DB
	table Table[T]
}

func NewSQLStore[T models.Record](db *DB, table Table[T]) *SQLStore[T] {
	return &SQLStore[T]{db: db, table: table}
}

// Load retrieves all stored records ordered by id.
func (s *SQLStore[T]) Load(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(s.table.Header(), ", "), s.table.Name, idColumn)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", s.db.dialect, s.table.Name, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		r, err := s.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan %s row: %w", s.db.dialect, s.table.Name, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", s.db.dialect, s.table.Name, err)
	}
	return records, nil
}

// Save clears the table and batch-inserts records inside one transaction,
// numbering ids from 1 in slice order.
func (s *SQLStore[T]) Save(ctx context.Context, records []T) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.db.dialect, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table.Name); err != nil {
		return fmt.Errorf("%s: clear %s: %w", s.db.dialect, s.table.Name, err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(ctx, tx, records[i:end], int64(i)); err != nil {
			return fmt.Errorf("%s: insert into %s: %w", s.db.dialect, s.table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.db.dialect, err)
	}
	return nil
}

func (s *SQLStore[T]) insertBatch(ctx context.Context, tx *sql.Tx, batch []T, offset int64) error {
	header := s.table.Header()
	width := len(header)

	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, r := range batch {
		base := idx * width
		holders := make([]string, width)
		for c := range holders {
			holders[c] = s.db.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")

		values := s.table.Values(r)
		if len(values) != len(s.table.Columns) {
			return fmt.Errorf("table %s: %d values for %d columns", s.table.Name, len(values), len(s.table.Columns))
		}
		valueArgs = append(valueArgs, offset+int64(idx)+1)
		valueArgs = append(valueArgs, values...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		s.table.Name, strings.Join(header, ", "), strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}
