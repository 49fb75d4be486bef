package store

import (
	"context"
	"path/filepath"

	"programtrack/internal/program/models"
	"programtrack/pkg/platform/sentinel"
	pstrings "programtrack/pkg/platform/strings"
	"programtrack/pkg/platform/tx"
)

// FileName is the registry table inside the data directory.
const FileName = "system-programs.csv"

const (
	colEnglishName = "EnglishName"
	colArabicName  = "ArabicName"
	colShowInList  = "ShowInList"
)

// CSV keeps the registry in <dataDir>/system-programs.csv. Every mutation
// rewrites the whole file.
type CSV struct {
	table *tx.Table
}

// NewCSV returns a registry rooted at dataDir.
func NewCSV(dataDir string) *CSV {
	return &CSV{table: tx.New(filepath.Join(dataDir, FileName), colEnglishName, colArabicName, colShowInList)}
}

// Path is the registry file location.
func (s *CSV) Path() string {
	return s.table.Path
}

// ListAll returns programs in file order, creating a header-only registry when absent.
func (s *CSV) ListAll(ctx context.Context) ([]*models.Program, error) {
	rows, err := s.table.Read(ctx)
	if err != nil {
		return nil, err
	}
	programs := make([]*models.Program, 0, len(rows))
	for _, row := range rows {
		programs = append(programs, fromRecord(row))
	}
	return programs, nil
}

func (s *CSV) FindByName(ctx context.Context, englishName string) (*models.Program, error) {
	programs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		if pstrings.SameKey(p.EnglishName, englishName) {
			return p, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Create appends program, returning sentinel.ErrAlreadyUsed when the key exists.
func (s *CSV) Create(ctx context.Context, program *models.Program) error {
	return s.table.RunInTx(ctx, func(rows []tx.Record) ([]tx.Record, error) {
		for _, row := range rows {
			if pstrings.SameKey(row[colEnglishName], program.EnglishName) {
				return nil, sentinel.ErrAlreadyUsed
			}
		}
		return append(rows, toRecord(program)), nil
	})
}

// Execute applies mutate to the matching program and rewrites the registry.
// A missing key returns sentinel.ErrNotFound without touching the file; an
// error from mutate aborts the write.
func (s *CSV) Execute(ctx context.Context, englishName string, mutate func(*models.Program) error) (*models.Program, error) {
	var updated *models.Program
	err := s.table.RunInTx(ctx, func(rows []tx.Record) ([]tx.Record, error) {
		for i, row := range rows {
			if !pstrings.SameKey(row[colEnglishName], englishName) {
				continue
			}
			p := fromRecord(row)
			if err := mutate(p); err != nil {
				return nil, err
			}
			rows[i] = toRecord(p)
			updated = p
			return rows, nil
		}
		return nil, sentinel.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func fromRecord(row tx.Record) *models.Program {
	return &models.Program{
		EnglishName: row[colEnglishName],
		ArabicName:  row[colArabicName],
		Visible:     pstrings.IsTrue(row[colShowInList]),
	}
}

func toRecord(p *models.Program) tx.Record {
	return tx.Record{
		colEnglishName: p.EnglishName,
		colArabicName:  p.ArabicName,
		colShowInList:  pstrings.FormatBool(p.Visible),
	}
}
