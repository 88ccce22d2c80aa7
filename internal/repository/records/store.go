// Package records persists the carrier allocation table in SQLite and
// loads it for index construction.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/telforge/phonegen/internal/domain/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS phone_location (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prefix TEXT NOT NULL,
	middle TEXT NOT NULL,
	province TEXT NOT NULL,
	city TEXT NOT NULL,
	operator INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_phone_location_location ON phone_location(province, city);
CREATE INDEX IF NOT EXISTS idx_phone_location_prefix ON phone_location(prefix);
`

// Store wraps the SQLite database holding allocation records.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the database at path, creating the file and its parent
// directory if needed, and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM phone_location").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// LoadAll reads the whole table. Rows are trusted: the importer is the
// only writer and validates before storing.
func (s *Store) LoadAll(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT prefix, middle, province, city, operator FROM phone_location ORDER BY prefix, middle")
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var recs []record.Record
	for rows.Next() {
		var (
			prefix, middle, province, city string
			operator                       int
		)
		if err := rows.Scan(&prefix, &middle, &province, &city, &operator); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, record.Reconstruct(prefix, middle, province, city, record.Operator(operator)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

// ReplaceAll wipes the table and inserts recs in one transaction, so a
// failed import leaves the previous data intact.
func (s *Store) ReplaceAll(ctx context.Context, recs []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM phone_location"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO phone_location (prefix, middle, province, city, operator) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx,
			rec.Prefix(), rec.MiddleSegment(), rec.Province(), rec.City(), int(rec.Operator()),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert record %s: %w", rec.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
