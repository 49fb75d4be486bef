// Package sqlite opens the embedded database used by the sqlite storage
// backend. It holds the same rows as the CSV tables; receipts stay on disk.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	english_name TEXT NOT NULL UNIQUE,
	arabic_name  TEXT NOT NULL,
	visible      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS members (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	program       TEXT NOT NULL,
	national_id   TEXT NOT NULL,
	full_name     TEXT NOT NULL,
	has_received  INTEGER NOT NULL DEFAULT 0,
	date_received TEXT NOT NULL DEFAULT '',
	UNIQUE (program, national_id)
);
`

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers inside this process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// RunInTx runs fn inside a transaction, committing when fn returns nil.
func RunInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
