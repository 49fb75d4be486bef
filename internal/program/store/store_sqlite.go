package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"programtrack/internal/platform/sqlite"
	"programtrack/internal/program/models"
	"programtrack/pkg/platform/sentinel"
)

// SQLite keeps the registry in the programs table of the embedded database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) ListAll(ctx context.Context) ([]*models.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT english_name, arabic_name, visible FROM programs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		p := &models.Program{}
		if err := rows.Scan(&p.EnglishName, &p.ArabicName, &p.Visible); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (s *SQLite) FindByName(ctx context.Context, englishName string) (*models.Program, error) {
	return findProgram(ctx, s.db, englishName)
}

func (s *SQLite) Create(ctx context.Context, program *models.Program) error {
	return sqlite.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := findProgram(ctx, tx, program.EnglishName)
		if err == nil {
			return sentinel.ErrAlreadyUsed
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO programs (english_name, arabic_name, visible) VALUES (?, ?, ?)`,
			strings.TrimSpace(program.EnglishName), program.ArabicName, program.Visible)
		if err != nil {
			return fmt.Errorf("insert program: %w", err)
		}
		return nil
	})
}

func (s *SQLite) Execute(ctx context.Context, englishName string, mutate func(*models.Program) error) (*models.Program, error) {
	var updated *models.Program
	err := sqlite.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := findProgram(ctx, tx, englishName)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE programs SET arabic_name = ?, visible = ? WHERE english_name = ?`,
			p.ArabicName, p.Visible, p.EnglishName)
		if err != nil {
			return fmt.Errorf("update program: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findProgram(ctx context.Context, q queryer, englishName string) (*models.Program, error) {
	p := &models.Program{}
	err := q.QueryRowContext(ctx,
		`SELECT english_name, arabic_name, visible FROM programs WHERE english_name = ?`,
		strings.TrimSpace(englishName)).Scan(&p.EnglishName, &p.ArabicName, &p.Visible)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find program: %w", err)
	}
	return p, nil
}
