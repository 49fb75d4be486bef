package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"programtrack/internal/member/importer"
	"programtrack/internal/member/models"
	"programtrack/internal/platform/metrics"
	programmodels "programtrack/internal/program/models"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/sentinel"
	"programtrack/pkg/requestcontext"
)

type MemberStore interface {
	List(ctx context.Context, program string) ([]*models.Member, error)
	FindByNationalID(ctx context.Context, program, nationalID string) (*models.Member, error)
	Create(ctx context.Context, program string, member *models.Member) error
	Execute(ctx context.Context, program, nationalID string, mutate func(*models.Member) error) (*models.Member, error)
	AppendMissing(ctx context.Context, program string, candidates []*models.Member) ([]*models.Member, error)
	CountByProgram(ctx context.Context, program string) (total, received int, err error)
}

// ProgramLookup resolves a program key against the registry.
type ProgramLookup interface {
	FindByName(ctx context.Context, englishName string) (*programmodels.Program, error)
}

// Service manages the member table of each program.
type Service struct {
	members  MemberStore
	programs ProgramLookup
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
func New(members MemberStore, programs ProgramLookup, opts ...Option) *Service {
	s := &Service{members: members, programs: programs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, program string) ([]*models.Member, error) {
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, program)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load members")
	}
	return members, nil
}

// Find returns the member with nationalID, compared after trimming.
func (s *Service) Find(ctx context.Context, program, nationalID string) (*models.Member, error) {
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	member, err := s.members.FindByNationalID(ctx, program, nationalID)
	if err != nil {
		return nil, wrapMemberErr(err)
	}
	return member, nil
}

// Add registers a member who has not received yet.
func (s *Service) Add(ctx context.Context, program, nationalID, fullName string) (*models.Member, error) {
	member, err := models.NewMember(nationalID, fullName)
	if err != nil {
		return nil, err
	}
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	if err := s.members.Create(ctx, program, member); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "member already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add member")
	}

	s.logInfo(ctx, "member added",
		"program", program,
		"national_id", member.NationalID,
	)
	if s.metrics != nil {
		s.metrics.MembersAdded.Inc()
	}
	return member, nil
}

// MarkReceived stamps the member as received at the request time. A missing
// member is ignored and (nil, nil) is returned; a missing program is
// CodeNotFound. Repeating the call moves the timestamp forward.
func (s *Service) MarkReceived(ctx context.Context, program, nationalID string) (*models.Member, error) {
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	member, err := s.members.Execute(ctx, program, nationalID, func(m *models.Member) error {
		m.MarkReceived(now)
		return nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record receipt")
	}
	s.logInfo(ctx, "member marked received",
		"program", program,
		"national_id", member.NationalID,
		"date_received", member.DateReceived,
	)
	return member, nil
}

// Import appends the members of an uploaded sheet. Rows lacking an ID or a
// name are counted as malformed; IDs already present (or repeated earlier in
// the sheet) are skipped. The table is written once.
func (s *Service) Import(ctx context.Context, program string, raw []byte) (*models.ImportResult, error) {
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	rows, err := importer.Read(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImportFailed, "failed to read member sheet")
	}

	result := &models.ImportResult{}
	candidates := make([]*models.Member, 0, len(rows))
	for _, row := range rows {
		if !row.Complete() {
			result.Malformed++
			continue
		}
		m, err := models.NewMember(row.NationalID, row.FullName)
		if err != nil {
			result.Malformed++
			continue
		}
		candidates = append(candidates, m)
	}

	added, err := s.members.AppendMissing(ctx, program, candidates)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save imported members")
	}
	result.Imported = len(added)
	result.Skipped = len(candidates) - len(added)

	s.logInfo(ctx, "members imported",
		"program", program,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"malformed", result.Malformed,
	)
	if s.metrics != nil {
		s.metrics.MembersImported.Add(float64(result.Imported))
		s.metrics.MembersSkipped.Add(float64(result.Skipped))
		s.metrics.ImportMalformed.Add(float64(result.Malformed))
	}
	return result, nil
}

func (s *Service) Summary(ctx context.Context, program string) (*models.Summary, error) {
	if err := s.requireProgram(ctx, program); err != nil {
		return nil, err
	}
	total, received, err := s.members.CountByProgram(ctx, program)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count members")
	}
	return &models.Summary{Total: total, Received: received}, nil
}

// Verify checks that nationalID may still receive: it must be registered and
// not have received before.
func (s *Service) Verify(ctx context.Context, program, nationalID string) (*models.Member, error) {
	if strings.TrimSpace(nationalID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "national id is required")
	}
	member, err := s.Find(ctx, program, nationalID)
	if err != nil {
		return nil, err
	}
	if member.HasReceived {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("already received on %s", member.DateReceived))
	}
	return member, nil
}

func (s *Service) requireProgram(ctx context.Context, program string) error {
	if _, err := s.programs.FindByName(ctx, program); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "program not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	args = append(args, "request_id", requestcontext.RequestID(ctx))
	s.logger.InfoContext(ctx, msg, args...)
}

func wrapMemberErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
}
