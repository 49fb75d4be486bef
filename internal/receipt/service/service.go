package service

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	membermodels "programtrack/internal/member/models"
	programmodels "programtrack/internal/program/models"
	"programtrack/internal/receipt/models"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/middleware/metadata"
	"programtrack/pkg/requestcontext"
)

type MemberService interface {
	List(ctx context.Context, program string) ([]*membermodels.Member, error)
	Find(ctx context.Context, program, nationalID string) (*membermodels.Member, error)
	MarkReceived(ctx context.Context, program, nationalID string) (*membermodels.Member, error)
}

type ProgramLookup interface {
	Find(ctx context.Context, englishName string) (*programmodels.Program, error)
}

type Generator interface {
	Generate(ctx context.Context, program, nationalID, fullName, signatureDataURI string) (*models.Receipt, error)
}

// Acknowledgment is the outcome of a recorded receipt.
type Acknowledgment struct {
	Member  *membermodels.Member `json:"member"`
	Receipt *models.Receipt      `json:"receipt"`
}

// Service lists receipts and runs the acknowledgment flow.
type Service struct {
	dataDir   string
	members   MemberService
	programs  ProgramLookup
	generator Generator
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service reading receipts from dataDir.
func New(dataDir string, members MemberService, programs ProgramLookup, generator Generator, opts ...Option) *Service {
	s := &Service{
		dataDir:   dataDir,
		members:   members,
		programs:  programs,
		generator: generator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the receipts of program, newest first. Receipts whose member
// is no longer registered carry the unknown-member placeholder.
func (s *Service) List(ctx context.Context, program string) ([]models.Entry, error) {
	if _, err := s.programs.Find(ctx, program); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(filepath.Join(s.dataDir, program))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Entry{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read program directory")
	}

	members, err := s.members.List(ctx, program)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[strings.TrimSpace(m.NationalID)] = m.FullName
	}

	entries := make([]models.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".pdf") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		nationalID := strings.TrimSuffix(de.Name(), ".pdf")
		name, ok := names[nationalID]
		if !ok {
			name = models.UnknownMember
		}
		entries = append(entries, models.Entry{
			Filename:   de.Name(),
			NationalID: nationalID,
			FullName:   name,
			Date:       info.ModTime(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].Filename < entries[j].Filename
	})
	return entries, nil
}

// Acknowledge records that nationalID received the program's materials and
// writes the signed receipt. The member row is updated before the PDF is
// written; a failed PDF leaves the member marked as received.
func (s *Service) Acknowledge(ctx context.Context, program, nationalID, signatureDataURI string) (*Acknowledgment, error) {
	if _, err := s.programs.Find(ctx, program); err != nil {
		return nil, err
	}
	member, err := s.members.Find(ctx, program, nationalID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(signatureDataURI) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "signature is required")
	}
	if member.HasReceived {
		return nil, dErrors.New(dErrors.CodeConflict, "already received on "+member.DateReceived)
	}

	updated, err := s.members.MarkReceived(ctx, program, member.NationalID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
	}

	receipt, err := s.generator.Generate(ctx, program, updated.NationalID, updated.FullName, signatureDataURI)
	if err != nil {
		s.logger.ErrorContext(ctx, "receipt generation failed after recording receipt",
			"request_id", requestcontext.RequestID(ctx),
			"program", program,
			"national_id", updated.NationalID,
			"error", err.Error(),
		)
		return nil, err
	}
	s.logger.InfoContext(ctx, "receipt acknowledged",
		"request_id", requestcontext.RequestID(ctx),
		"program", program,
		"national_id", updated.NationalID,
		"client_ip", metadata.GetClientIP(ctx),
		"user_agent", metadata.GetUserAgent(ctx),
		"signature_embedded", receipt.SignatureEmbedded,
	)
	return &Acknowledgment{Member: updated, Receipt: receipt}, nil
}

// Open returns the receipt file for streaming. The caller closes it.
func (s *Service) Open(ctx context.Context, program, filename string) (*os.File, error) {
	if !strings.HasSuffix(filename, ".pdf") || strings.ContainsAny(filename, `/\`) || filename == ".pdf" {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid receipt file name")
	}
	if _, err := s.programs.Find(ctx, program); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dataDir, program, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, dErrors.New(dErrors.CodeNotFound, "receipt not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open receipt")
	}
	return f, nil
}
