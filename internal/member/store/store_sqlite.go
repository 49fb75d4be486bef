package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"programtrack/internal/member/models"
	"programtrack/internal/platform/sqlite"
	"programtrack/pkg/platform/sentinel"
)

// SQLite keeps members in the members table. Provision still creates the
// program directory since receipts are written there.
type SQLite struct {
	db      *sql.DB
	dataDir string
}

func NewSQLite(db *sql.DB, dataDir string) *SQLite {
	return &SQLite{db: db, dataDir: dataDir}
}

func (s *SQLite) Provision(ctx context.Context, program string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.dataDir, program), 0o755); err != nil {
		return fmt.Errorf("create program directory: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, program string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT national_id, full_name, has_received, date_received
		   FROM members WHERE program = ? ORDER BY seq`, program)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		if err := rows.Scan(&m.NationalID, &m.FullName, &m.HasReceived, &m.DateReceived); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLite) FindByNationalID(ctx context.Context, program, nationalID string) (*models.Member, error) {
	return findMember(ctx, s.db, program, nationalID)
}

func (s *SQLite) Create(ctx context.Context, program string, member *models.Member) error {
	return sqlite.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := findMember(ctx, tx, program, member.NationalID)
		if err == nil {
			return sentinel.ErrAlreadyUsed
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		return insertMember(ctx, tx, program, member)
	})
}

func (s *SQLite) Execute(ctx context.Context, program, nationalID string, mutate func(*models.Member) error) (*models.Member, error) {
	var updated *models.Member
	err := sqlite.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		m, err := findMember(ctx, tx, program, nationalID)
		if err != nil {
			return err
		}
		if err := mutate(m); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE members SET full_name = ?, has_received = ?, date_received = ?
			  WHERE program = ? AND national_id = ?`,
			m.FullName, m.HasReceived, m.DateReceived, program, m.NationalID)
		if err != nil {
			return fmt.Errorf("update member: %w", err)
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLite) AppendMissing(ctx context.Context, program string, candidates []*models.Member) ([]*models.Member, error) {
	var added []*models.Member
	err := sqlite.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, m := range candidates {
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO members (program, national_id, full_name, has_received, date_received)
				 VALUES (?, ?, ?, ?, ?)`,
				program, strings.TrimSpace(m.NationalID), m.FullName, m.HasReceived, m.DateReceived)
			if err != nil {
				return fmt.Errorf("insert member: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				added = append(added, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (s *SQLite) CountByProgram(ctx context.Context, program string) (total, received int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(has_received), 0) FROM members WHERE program = ?`, program).
		Scan(&total, &received)
	if err != nil {
		return 0, 0, fmt.Errorf("count members: %w", err)
	}
	return total, received, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findMember(ctx context.Context, q queryer, program, nationalID string) (*models.Member, error) {
	m := &models.Member{}
	err := q.QueryRowContext(ctx,
		`SELECT national_id, full_name, has_received, date_received
		   FROM members WHERE program = ? AND national_id = ?`,
		program, strings.TrimSpace(nationalID)).
		Scan(&m.NationalID, &m.FullName, &m.HasReceived, &m.DateReceived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return m, nil
}

func insertMember(ctx context.Context, tx *sql.Tx, program string, m *models.Member) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO members (program, national_id, full_name, has_received, date_received)
		 VALUES (?, ?, ?, ?, ?)`,
		program, strings.TrimSpace(m.NationalID), m.FullName, m.HasReceived, m.DateReceived)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}
