package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"programtrack/internal/platform/sqlite"
	"programtrack/internal/program/models"
	"programtrack/pkg/platform/sentinel"
)

type registry interface {
	ListAll(ctx context.Context) ([]*models.Program, error)
	FindByName(ctx context.Context, englishName string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Execute(ctx context.Context, englishName string, mutate func(*models.Program) error) (*models.Program, error)
}

// RegistrySuite runs the same contract against every backend.
type RegistrySuite struct {
	suite.Suite
	ctx     context.Context
	newRepo func() registry
	store   registry
}

func TestInMemoryRegistry(t *testing.T) {
	suite.Run(t, &RegistrySuite{newRepo: func() registry { return NewInMemory() }})
}

func TestCSVRegistry(t *testing.T) {
	s := &RegistrySuite{}
	s.newRepo = func() registry { return NewCSV(s.T().TempDir()) }
	suite.Run(t, s)
}

func TestSQLiteRegistry(t *testing.T) {
	s := &RegistrySuite{}
	s.newRepo = func() registry {
		db, err := sqlite.Open(context.Background(), filepath.Join(s.T().TempDir(), "test.db"))
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = db.Close() })
		return NewSQLite(db)
	}
	suite.Run(t, s)
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newRepo()
}

func (s *RegistrySuite) TestCreateAndList() {
	s.Run("empty registry lists nothing", func() {
		programs, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Empty(programs)
	})

	s.Run("keeps insertion order", func() {
		s.Require().NoError(s.store.Create(s.ctx, &models.Program{EnglishName: "books", ArabicName: "الكتب", Visible: true}))
		s.Require().NoError(s.store.Create(s.ctx, &models.Program{EnglishName: "aid", ArabicName: "المساعدات", Visible: false}))

		programs, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(programs, 2)
		s.Equal("books", programs[0].EnglishName)
		s.True(programs[0].Visible)
		s.Equal("aid", programs[1].EnglishName)
		s.False(programs[1].Visible)
	})

	s.Run("rejects duplicate key", func() {
		err := s.store.Create(s.ctx, &models.Program{EnglishName: "books", ArabicName: "x", Visible: true})
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

func (s *RegistrySuite) TestFindByName() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Program{EnglishName: "books", ArabicName: "الكتب", Visible: true}))

	s.Run("matches after trimming", func() {
		p, err := s.store.FindByName(s.ctx, "  books ")
		s.Require().NoError(err)
		s.Equal("الكتب", p.ArabicName)
	})

	s.Run("unknown key", func() {
		_, err := s.store.FindByName(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RegistrySuite) TestExecute() {
	s.Require().NoError(s.store.Create(s.ctx, &models.Program{EnglishName: "books", ArabicName: "الكتب", Visible: true}))

	s.Run("persists the mutation", func() {
		updated, err := s.store.Execute(s.ctx, "books", func(p *models.Program) error {
			p.ToggleVisibility()
			return nil
		})
		s.Require().NoError(err)
		s.False(updated.Visible)

		found, err := s.store.FindByName(s.ctx, "books")
		s.Require().NoError(err)
		s.False(found.Visible)
	})

	s.Run("mutation error aborts the write", func() {
		boom := errors.New("boom")
		_, err := s.store.Execute(s.ctx, "books", func(p *models.Program) error {
			p.ArabicName = "changed"
			return boom
		})
		s.ErrorIs(err, boom)

		found, err := s.store.FindByName(s.ctx, "books")
		s.Require().NoError(err)
		s.Equal("الكتب", found.ArabicName)
	})

	s.Run("unknown key", func() {
		called := false
		_, err := s.store.Execute(s.ctx, "missing", func(p *models.Program) error {
			called = true
			return nil
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.False(called)
	})
}

func TestCSVRegistryFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCSV(dir)

	t.Run("listing creates a header-only registry", func(t *testing.T) {
		_, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		raw, err := os.ReadFile(filepath.Join(dir, FileName))
		if err != nil {
			t.Fatalf("read registry: %v", err)
		}
		want := "\xEF\xBB\xBFEnglishName,ArabicName,ShowInList\r\n"
		if string(raw) != want {
			t.Fatalf("unexpected registry bytes %q", raw)
		}
	})

	t.Run("visibility is stored as lowercase true/false", func(t *testing.T) {
		if err := store.Create(ctx, &models.Program{EnglishName: "books", ArabicName: "الكتب", Visible: true}); err != nil {
			t.Fatalf("create: %v", err)
		}
		raw, _ := os.ReadFile(store.Path())
		want := "\xEF\xBB\xBFEnglishName,ArabicName,ShowInList\r\nbooks,الكتب,true\r\n"
		if string(raw) != want {
			t.Fatalf("unexpected registry bytes %q", raw)
		}
	})

	t.Run("mutating an unknown key leaves the registry file untouched", func(t *testing.T) {
		past := time.Now().Add(-time.Hour).Truncate(time.Second)
		if err := os.Chtimes(store.Path(), past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
		before, err := os.ReadFile(store.Path())
		if err != nil {
			t.Fatalf("read registry: %v", err)
		}

		_, err = store.Execute(ctx, "missing", func(p *models.Program) error {
			p.ToggleVisibility()
			return nil
		})
		if !errors.Is(err, sentinel.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		after, err := os.ReadFile(store.Path())
		if err != nil {
			t.Fatalf("read registry: %v", err)
		}
		if !bytes.Equal(before, after) {
			t.Fatalf("registry rewritten: %q -> %q", before, after)
		}
		info, err := os.Stat(store.Path())
		if err != nil {
			t.Fatalf("stat registry: %v", err)
		}
		if !info.ModTime().Equal(past) {
			t.Fatalf("registry mtime changed: %v -> %v", past, info.ModTime())
		}
	})

	t.Run("flag parsing is case-insensitive", func(t *testing.T) {
		content := "EnglishName,ArabicName,ShowInList\nbooks,الكتب,TRUE\naid,مساعدات,yes\n"
		if err := os.WriteFile(store.Path(), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		programs, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(programs) != 2 || !programs[0].Visible || programs[1].Visible {
			t.Fatalf("unexpected visibility parse: %+v %+v", programs[0], programs[1])
		}
	})
}
