package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"programtrack/internal/member/models"
	programmodels "programtrack/internal/program/models"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/sentinel"
	pstrings "programtrack/pkg/platform/strings"
	"programtrack/pkg/platform/tx"
)

const (
	colNationalID   = "NationalID"
	colFullName     = "FullName"
	colHasReceived  = "HasReceived"
	colDateReceived = "DateReceived"
)

// CSV keeps one table per program at <dataDir>/<program>/<program>-users.csv.
type CSV struct {
	dataDir string
}

func NewCSV(dataDir string) *CSV {
	return &CSV{dataDir: dataDir}
}

// TablePath is where the member table of program lives.
func (s *CSV) TablePath(program string) string {
	return filepath.Join(s.dataDir, program, program+"-users.csv")
}

func (s *CSV) table(program string) (*tx.Table, error) {
	if !programmodels.ValidEnglishName(program) {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid program key %q", program))
	}
	return tx.New(s.TablePath(program), colNationalID, colFullName, colHasReceived, colDateReceived), nil
}

// Provision creates the program directory and an empty member table. Existing
// files are left alone.
func (s *CSV) Provision(ctx context.Context, program string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := s.table(program)
	if err != nil {
		return err
	}
	return t.Ensure()
}

func (s *CSV) List(ctx context.Context, program string) ([]*models.Member, error) {
	t, err := s.table(program)
	if err != nil {
		return nil, err
	}
	rows, err := t.Read(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]*models.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, fromRecord(row))
	}
	return members, nil
}

func (s *CSV) FindByNationalID(ctx context.Context, program, nationalID string) (*models.Member, error) {
	members, err := s.List(ctx, program)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if pstrings.SameKey(m.NationalID, nationalID) {
			return m, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Create appends member, returning sentinel.ErrAlreadyUsed when the national
// ID is already registered in program.
func (s *CSV) Create(ctx context.Context, program string, member *models.Member) error {
	t, err := s.table(program)
	if err != nil {
		return err
	}
	return t.RunInTx(ctx, func(rows []tx.Record) ([]tx.Record, error) {
		for _, row := range rows {
			if pstrings.SameKey(row[colNationalID], member.NationalID) {
				return nil, sentinel.ErrAlreadyUsed
			}
		}
		return append(rows, toRecord(member)), nil
	})
}

// Execute applies mutate to the matching member and rewrites the table.
func (s *CSV) Execute(ctx context.Context, program, nationalID string, mutate func(*models.Member) error) (*models.Member, error) {
	t, err := s.table(program)
	if err != nil {
		return nil, err
	}
	var updated *models.Member
	err = t.RunInTx(ctx, func(rows []tx.Record) ([]tx.Record, error) {
		for i, row := range rows {
			if !pstrings.SameKey(row[colNationalID], nationalID) {
				continue
			}
			m := fromRecord(row)
			if err := mutate(m); err != nil {
				return nil, err
			}
			rows[i] = toRecord(m)
			updated = m
			return rows, nil
		}
		return nil, sentinel.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendMissing appends the candidates whose national ID is not yet present,
// in order, and writes the table once. Later duplicates of an ID within
// candidates are dropped too. It returns the members actually added.
func (s *CSV) AppendMissing(ctx context.Context, program string, candidates []*models.Member) ([]*models.Member, error) {
	t, err := s.table(program)
	if err != nil {
		return nil, err
	}
	var added []*models.Member
	err = t.RunInTx(ctx, func(rows []tx.Record) ([]tx.Record, error) {
		seen := make(map[string]struct{}, len(rows)+len(candidates))
		for _, row := range rows {
			seen[strings.TrimSpace(row[colNationalID])] = struct{}{}
		}
		for _, m := range candidates {
			if _, dup := seen[m.NationalID]; dup {
				continue
			}
			seen[m.NationalID] = struct{}{}
			rows = append(rows, toRecord(m))
			added = append(added, m)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *CSV) CountByProgram(ctx context.Context, program string) (total, received int, err error) {
	members, err := s.List(ctx, program)
	if err != nil {
		return 0, 0, err
	}
	return count(members)
}

func count(members []*models.Member) (total, received int, err error) {
	for _, m := range members {
		total++
		if m.HasReceived {
			received++
		}
	}
	return total, received, nil
}

func fromRecord(row tx.Record) *models.Member {
	return &models.Member{
		NationalID:   row[colNationalID],
		FullName:     row[colFullName],
		HasReceived:  pstrings.IsTrue(row[colHasReceived]),
		DateReceived: row[colDateReceived],
	}
}

func toRecord(m *models.Member) tx.Record {
	return tx.Record{
		colNationalID:   m.NationalID,
		colFullName:     m.FullName,
		colHasReceived:  pstrings.FormatBool(m.HasReceived),
		colDateReceived: m.DateReceived,
	}
}
