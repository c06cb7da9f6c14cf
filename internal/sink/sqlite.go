package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"listingscraper/internal/catalog"
	"strings"
)

// Schema is the table rows are mirrored into, columns follow catalog.Header.
//
//go:embed schema.sql
var Schema string

var insertRow = fmt.Sprintf(
	"insert into listing_rows (%s) values (%s)",
	strings.Join(catalog.Header, ", "),
	strings.TrimSuffix(strings.Repeat("?, ", len(catalog.Header)), ", "),
)

// SQLite mirrors rows into a sqlite (or libsql) database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates the schema if needed. The database is owned by the
// returned SQLite and is closed by Close.
func NewSQLite(ctx context.Context, db *sql.DB) (SQLite, error) {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return SQLite{}, fmt.Errorf("create schema: %w", err)
	}
	return SQLite{db: db}, nil
}

func (s SQLite) AppendRow(ctx context.Context, row catalog.Row) error {
	values := row.Values()
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	_, err := s.db.ExecContext(ctx, insertRow, args...)
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

// Count returns how many rows the table holds.
func (s SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "select count(*) from listing_rows").Scan(&n)
	return n, err
}

func (s SQLite) Close() error {
	return s.db.Close()
}
