package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"programtrack/internal/platform/metrics"
	"programtrack/internal/program/models"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/sentinel"
	"programtrack/pkg/requestcontext"
)

type ProgramStore interface {
	ListAll(ctx context.Context) ([]*models.Program, error)
	FindByName(ctx context.Context, englishName string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Execute(ctx context.Context, englishName string, mutate func(*models.Program) error) (*models.Program, error)
}

// MemberTables provisions and counts the per-program member tables.
type MemberTables interface {
	Provision(ctx context.Context, program string) error
	CountByProgram(ctx context.Context, program string) (total, received int, err error)
}

// Service manages the program registry.
type Service struct {
	programs ProgramStore
	members  MemberTables
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(programs ProgramStore, members MemberTables, opts ...Option) *Service {
	s := &Service{programs: programs, members: members}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every program in registry order.
func (s *Service) ListAll(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.programs.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load programs")
	}
	return programs, nil
}

// ListVisible returns the programs offered on the public list.
func (s *Service) ListVisible(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Program, 0, len(programs))
	for _, p := range programs {
		if p.Visible {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *Service) Find(ctx context.Context, englishName string) (*models.Program, error) {
	program, err := s.programs.FindByName(ctx, englishName)
	if err != nil {
		return nil, wrapProgramErr(err)
	}
	return program, nil
}

// Get fetches a program together with its member counts.
func (s *Service) Get(ctx context.Context, englishName string) (*models.ProgramDetails, error) {
	program, err := s.Find(ctx, englishName)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, program)
}

// ListDetails returns visible programs (or all of them) with member counts.
func (s *Service) ListDetails(ctx context.Context, includeHidden bool) ([]*models.ProgramDetails, error) {
	var (
		programs []*models.Program
		err      error
	)
	if includeHidden {
		programs, err = s.ListAll(ctx)
	} else {
		programs, err = s.ListVisible(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*models.ProgramDetails, 0, len(programs))
	for _, p := range programs {
		d, err := s.details(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Add registers a visible program and provisions its member table.
func (s *Service) Add(ctx context.Context, englishName, arabicName string) (*models.Program, error) {
	program, err := models.NewProgram(englishName, arabicName)
	if err != nil {
		return nil, err
	}

	if err := s.programs.Create(ctx, program); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "program already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create program")
	}
	if err := s.members.Provision(ctx, program.EnglishName); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision member table")
	}

	s.logInfo(ctx, "program created",
		"program", program.EnglishName,
	)
	if s.metrics != nil {
		s.metrics.ProgramsCreated.Inc()
	}
	return program, nil
}

// ToggleVisibility flips the visibility flag. An unknown key is ignored and
// the registry is left untouched.
func (s *Service) ToggleVisibility(ctx context.Context, englishName string) (*models.Program, error) {
	program, err := s.programs.Execute(ctx, englishName, func(p *models.Program) error {
		p.ToggleVisibility()
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle program visibility")
	}
	s.logInfo(ctx, "program visibility toggled",
		"program", program.EnglishName,
		"visible", program.Visible,
	)
	return program, nil
}

// Rename replaces the Arabic display name of an existing program.
func (s *Service) Rename(ctx context.Context, englishName, arabicName string) (*models.Program, error) {
	if strings.TrimSpace(arabicName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "arabic name is required")
	}
	program, err := s.programs.Execute(ctx, englishName, func(p *models.Program) error {
		return p.Rename(arabicName)
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, wrapProgramErr(err)
	}
	s.logInfo(ctx, "program renamed",
		"program", program.EnglishName,
	)
	return program, nil
}

func (s *Service) details(ctx context.Context, program *models.Program) (*models.ProgramDetails, error) {
	total, received, err := s.members.CountByProgram(ctx, program.EnglishName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count members")
	}
	return &models.ProgramDetails{Program: program, Total: total, Received: received}, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	args = append(args, "request_id", requestcontext.RequestID(ctx))
	s.logger.InfoContext(ctx, msg, args...)
}

func wrapProgramErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "program not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
}
