package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"programtrack/internal/platform/metrics"
	"programtrack/internal/program/store"
	dErrors "programtrack/pkg/domain-errors"
)

type stubTables struct {
	provisioned []string
	counts      map[string][2]int
	err         error
}

func (t *stubTables) Provision(_ context.Context, program string) error {
	if t.err != nil {
		return t.err
	}
	t.provisioned = append(t.provisioned, program)
	return nil
}

func (t *stubTables) CountByProgram(_ context.Context, program string) (int, int, error) {
	if t.err != nil {
		return 0, 0, t.err
	}
	c := t.counts[program]
	return c[0], c[1], nil
}

type ProgramServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemory
	tables  *stubTables
	metrics *metrics.Metrics
	logs    *bytes.Buffer
	service *Service
}

func TestProgramServiceSuite(t *testing.T) {
	suite.Run(t, new(ProgramServiceSuite))
}

func (s *ProgramServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.tables = &stubTables{counts: map[string][2]int{}}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.service = New(s.store, s.tables,
		WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *ProgramServiceSuite) TestAdd() {
	s.Run("adds a visible program and provisions its table", func() {
		p, err := s.service.Add(s.ctx, "books", "الكتب")
		s.Require().NoError(err)
		s.True(p.Visible)

		found, err := s.service.Find(s.ctx, "books")
		s.Require().NoError(err)
		s.Equal("الكتب", found.ArabicName)
		s.True(found.Visible)
		s.Equal([]string{"books"}, s.tables.provisioned)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.ProgramsCreated))
		s.Contains(s.logs.String(), "program created")
	})

	s.Run("duplicate key is a conflict and leaves the registry unchanged", func() {
		_, err := s.service.Add(s.ctx, "books", "كتب أخرى")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		all, err := s.service.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal("الكتب", all[0].ArabicName)
	})

	s.Run("key pattern", func() {
		cases := []struct {
			name  string
			valid bool
		}{
			{"books", true},
			{"b-2_x", true},
			{"2books", false},
			{"bo oks", false},
			{"books/../x", false},
			{"", false},
		}
		for _, tc := range cases {
			_, err := s.service.Add(s.ctx, tc.name, "اسم")
			if tc.valid {
				s.NoError(err, tc.name)
			} else {
				s.True(dErrors.HasCode(err, dErrors.CodeValidation), tc.name)
			}
		}
	})

	s.Run("empty arabic name is rejected", func() {
		_, err := s.service.Add(s.ctx, "other", "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("provisioning failure is internal", func() {
		s.tables.err = errors.New("disk full")
		defer func() { s.tables.err = nil }()
		_, err := s.service.Add(s.ctx, "late", "متأخر")
		s.True(dErrors.Is(err, dErrors.CodeInternal))
	})
}

func (s *ProgramServiceSuite) TestVisibility() {
	_, err := s.service.Add(s.ctx, "books", "الكتب")
	s.Require().NoError(err)
	_, err = s.service.Add(s.ctx, "aid", "المساعدات")
	s.Require().NoError(err)

	s.Run("toggle hides a program from the visible list", func() {
		p, err := s.service.ToggleVisibility(s.ctx, "aid")
		s.Require().NoError(err)
		s.False(p.Visible)

		visible, err := s.service.ListVisible(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(visible, 1)
		s.Equal("books", visible[0].EnglishName)
	})

	s.Run("double toggle restores visibility", func() {
		_, err := s.service.ToggleVisibility(s.ctx, "books")
		s.Require().NoError(err)
		p, err := s.service.ToggleVisibility(s.ctx, "books")
		s.Require().NoError(err)
		s.True(p.Visible)
	})

	s.Run("unknown key is a silent no-op", func() {
		p, err := s.service.ToggleVisibility(s.ctx, "missing")
		s.NoError(err)
		s.Nil(p)
	})
}

func (s *ProgramServiceSuite) TestRename() {
	_, err := s.service.Add(s.ctx, "books", "الكتب")
	s.Require().NoError(err)

	s.Run("replaces the arabic name", func() {
		p, err := s.service.Rename(s.ctx, "books", "كتب مدرسية")
		s.Require().NoError(err)
		s.Equal("كتب مدرسية", p.ArabicName)
	})

	s.Run("empty name is rejected", func() {
		_, err := s.service.Rename(s.ctx, "books", " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown program", func() {
		_, err := s.service.Rename(s.ctx, "missing", "اسم")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProgramServiceSuite) TestDetails() {
	_, err := s.service.Add(s.ctx, "books", "الكتب")
	s.Require().NoError(err)
	_, err = s.service.Add(s.ctx, "aid", "المساعدات")
	s.Require().NoError(err)
	_, err = s.service.ToggleVisibility(s.ctx, "aid")
	s.Require().NoError(err)
	s.tables.counts["books"] = [2]int{3, 1}

	s.Run("get includes member counts", func() {
		d, err := s.service.Get(s.ctx, "books")
		s.Require().NoError(err)
		s.Equal(3, d.Total)
		s.Equal(1, d.Received)
	})

	s.Run("get of unknown program", func() {
		_, err := s.service.Get(s.ctx, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("list details honours visibility", func() {
		visible, err := s.service.ListDetails(s.ctx, false)
		s.Require().NoError(err)
		s.Len(visible, 1)

		all, err := s.service.ListDetails(s.ctx, true)
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func TestToggleUnknownProgramKeepsRegistryFile(t *testing.T) {
	ctx := context.Background()
	registry := store.NewCSV(t.TempDir())
	svc := New(registry, &stubTables{counts: map[string][2]int{}})

	_, err := svc.Add(ctx, "books", "الكتب")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	before, err := os.ReadFile(registry.Path())
	if err != nil {
		t.Fatalf("read registry: %v", err)
	}

	program, err := svc.ToggleVisibility(ctx, "missing")
	if err != nil || program != nil {
		t.Fatalf("expected silent no-op, got %v, %v", program, err)
	}

	after, err := os.ReadFile(registry.Path())
	if err != nil {
		t.Fatalf("read registry: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("registry rewritten: %q -> %q", before, after)
	}
}
