// Package tx runs read-modify-write transactions over whole CSV tables.
//
// A table is always read in full, handed to the caller and rewritten in full.
// There is no locking and no atomic rename: concurrent writers can lose
// updates and a crash mid-write can truncate the file.
package tx

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Record is one data row keyed by column name.
type Record map[string]string

// ErrRollback returned from a RunInTx callback discards the changes without
// rewriting the table.
var ErrRollback = errors.New("tx: rollback")

// Table is a CSV file with a fixed header, stored as UTF-8 with a byte-order mark.
type Table struct {
	Path   string
	Header []string
}

// New describes a table at path with the given columns.
func New(path string, header ...string) *Table {
	return &Table{Path: path, Header: header}
}

// Ensure creates the parent directory and a header-only table when the file
// is absent. Existing files are never touched.
func (t *Table) Ensure() error {
	if err := os.MkdirAll(filepath.Dir(t.Path), 0o755); err != nil {
		return fmt.Errorf("create table directory: %w", err)
	}
	_, err := os.Stat(t.Path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat table: %w", err)
	}
	return t.write(nil)
}

// Read loads every row, creating the table first when it does not exist.
func (t *Table) Read(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.Ensure(); err != nil {
		return nil, err
	}
	return t.read()
}

// RunInTx loads the table, passes the rows to fn and rewrites the whole file
// with the rows fn returns. Returning ErrRollback keeps the file as it was;
// any other error is returned unchanged and nothing is written.
func (t *Table) RunInTx(ctx context.Context, fn func(rows []Record) ([]Record, error)) error {
	rows, err := t.Read(ctx)
	if err != nil {
		return err
	}
	next, err := fn(rows)
	if errors.Is(err, ErrRollback) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.write(next)
}

func (t *Table) read() ([]Record, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}

	var rows []Record
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table row: %w", err)
		}
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(fields) {
				rec[name] = fields[i]
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func (t *Table) write(rows []Record) (err error) {
	f, err := os.Create(t.Path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close table: %w", cerr)
		}
	}()

	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(enc)
	w.UseCRLF = true

	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	fields := make([]string, len(t.Header))
	for _, rec := range rows {
		for i, name := range t.Header {
			fields[i] = rec[name]
		}
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("write table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush table encoding: %w", err)
	}
	return nil
}
