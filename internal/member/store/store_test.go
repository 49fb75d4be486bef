package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"programtrack/internal/member/models"
	"programtrack/internal/platform/sqlite"
	dErrors "programtrack/pkg/domain-errors"
	"programtrack/pkg/platform/sentinel"
)

type memberTables interface {
	Provision(ctx context.Context, program string) error
	List(ctx context.Context, program string) ([]*models.Member, error)
	FindByNationalID(ctx context.Context, program, nationalID string) (*models.Member, error)
	Create(ctx context.Context, program string, member *models.Member) error
	Execute(ctx context.Context, program, nationalID string, mutate func(*models.Member) error) (*models.Member, error)
	AppendMissing(ctx context.Context, program string, candidates []*models.Member) ([]*models.Member, error)
	CountByProgram(ctx context.Context, program string) (int, int, error)
}

// MemberStoreSuite runs the same contract against every backend.
type MemberStoreSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() memberTables
	store    memberTables
}

func TestInMemoryMemberStore(t *testing.T) {
	suite.Run(t, &MemberStoreSuite{newStore: func() memberTables { return NewInMemory() }})
}

func TestCSVMemberStore(t *testing.T) {
	s := &MemberStoreSuite{}
	s.newStore = func() memberTables { return NewCSV(s.T().TempDir()) }
	suite.Run(t, s)
}

func TestSQLiteMemberStore(t *testing.T) {
	s := &MemberStoreSuite{}
	s.newStore = func() memberTables {
		dir := s.T().TempDir()
		db, err := sqlite.Open(context.Background(), filepath.Join(dir, "test.db"))
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = db.Close() })
		return NewSQLite(db, dir)
	}
	suite.Run(t, s)
}

func (s *MemberStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
	s.Require().NoError(s.store.Provision(s.ctx, "books"))
}

func member(id, name string) *models.Member {
	return &models.Member{NationalID: id, FullName: name}
}

func (s *MemberStoreSuite) TestCreateAndFind() {
	s.Run("provisioned table is empty", func() {
		members, err := s.store.List(s.ctx, "books")
		s.Require().NoError(err)
		s.Empty(members)
	})

	s.Run("created member is found with trimmed lookup", func() {
		s.Require().NoError(s.store.Create(s.ctx, "books", member("100200300", "Sara Ali")))

		m, err := s.store.FindByNationalID(s.ctx, "books", " 100200300 ")
		s.Require().NoError(err)
		s.Equal("Sara Ali", m.FullName)
		s.False(m.HasReceived)
		s.Empty(m.DateReceived)
	})

	s.Run("duplicate national id is rejected", func() {
		err := s.store.Create(s.ctx, "books", member("100200300", "Someone Else"))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		members, err := s.store.List(s.ctx, "books")
		s.Require().NoError(err)
		s.Len(members, 1)
	})

	s.Run("same national id in another program is allowed", func() {
		s.Require().NoError(s.store.Provision(s.ctx, "aid"))
		s.Require().NoError(s.store.Create(s.ctx, "aid", member("100200300", "Sara Ali")))
	})

	s.Run("unknown national id", func() {
		_, err := s.store.FindByNationalID(s.ctx, "books", "999")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemberStoreSuite) TestExecute() {
	s.Require().NoError(s.store.Create(s.ctx, "books", member("1", "Sara")))

	s.Run("persists the mutation", func() {
		updated, err := s.store.Execute(s.ctx, "books", "1", func(m *models.Member) error {
			m.HasReceived = true
			m.DateReceived = "2024-01-02 03:04:05"
			return nil
		})
		s.Require().NoError(err)
		s.True(updated.HasReceived)

		found, err := s.store.FindByNationalID(s.ctx, "books", "1")
		s.Require().NoError(err)
		s.True(found.HasReceived)
		s.Equal("2024-01-02 03:04:05", found.DateReceived)
	})

	s.Run("mutation error aborts the write", func() {
		boom := errors.New("boom")
		_, err := s.store.Execute(s.ctx, "books", "1", func(m *models.Member) error {
			m.FullName = "changed"
			return boom
		})
		s.ErrorIs(err, boom)

		found, err := s.store.FindByNationalID(s.ctx, "books", "1")
		s.Require().NoError(err)
		s.Equal("Sara", found.FullName)
	})

	s.Run("unknown member", func() {
		_, err := s.store.Execute(s.ctx, "books", "404", func(m *models.Member) error { return nil })
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemberStoreSuite) TestAppendMissing() {
	s.Require().NoError(s.store.Create(s.ctx, "books", member("1", "Sara")))

	added, err := s.store.AppendMissing(s.ctx, "books", []*models.Member{
		member("1", "Sara again"),
		member("2", "Omar"),
		member("3", "Lina"),
		member("2", "Omar twice"),
	})
	s.Require().NoError(err)
	s.Require().Len(added, 2)
	s.Equal("2", added[0].NationalID)
	s.Equal("3", added[1].NationalID)

	members, err := s.store.List(s.ctx, "books")
	s.Require().NoError(err)
	s.Require().Len(members, 3)
	s.Equal("Sara", members[0].FullName)
	s.Equal("Omar", members[1].FullName)
	s.Equal("Lina", members[2].FullName)
}

func (s *MemberStoreSuite) TestCountByProgram() {
	total, received, err := s.store.CountByProgram(s.ctx, "books")
	s.Require().NoError(err)
	s.Zero(total)
	s.Zero(received)

	s.Require().NoError(s.store.Create(s.ctx, "books", member("1", "Sara")))
	s.Require().NoError(s.store.Create(s.ctx, "books", member("2", "Omar")))
	_, err = s.store.Execute(s.ctx, "books", "2", func(m *models.Member) error {
		m.HasReceived = true
		return nil
	})
	s.Require().NoError(err)

	total, received, err = s.store.CountByProgram(s.ctx, "books")
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal(1, received)
}

func TestCSVMemberTableFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewCSV(dir)

	t.Run("provision creates directory and header-only table", func(t *testing.T) {
		if err := store.Provision(ctx, "books"); err != nil {
			t.Fatalf("provision: %v", err)
		}
		raw, err := os.ReadFile(filepath.Join(dir, "books", "books-users.csv"))
		if err != nil {
			t.Fatalf("read table: %v", err)
		}
		want := "\xEF\xBB\xBFNationalID,FullName,HasReceived,DateReceived\r\n"
		if string(raw) != want {
			t.Fatalf("unexpected table bytes %q", raw)
		}
	})

	t.Run("provision never overwrites an existing table", func(t *testing.T) {
		content := "NationalID,FullName,HasReceived,DateReceived\n1,Sara,True,2024-01-01 10:00:00\n"
		if err := os.WriteFile(store.TablePath("books"), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := store.Provision(ctx, "books"); err != nil {
			t.Fatalf("provision: %v", err)
		}
		m, err := store.FindByNationalID(ctx, "books", "1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if !m.HasReceived {
			t.Fatalf("expected case-insensitive received flag")
		}
	})

	t.Run("rejects program keys that could escape the data directory", func(t *testing.T) {
		_, err := store.List(ctx, "../etc")
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
