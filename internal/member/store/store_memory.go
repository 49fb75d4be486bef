package store

import (
	"context"
	"sync"

	"programtrack/internal/member/models"
	"programtrack/pkg/platform/sentinel"
	pstrings "programtrack/pkg/platform/strings"
)

// InMemory holds member tables in process memory.
type InMemory struct {
	mu     sync.RWMutex
	tables map[string][]*models.Member
}

func NewInMemory() *InMemory {
	return &InMemory{tables: make(map[string][]*models.Member)}
}

func (s *InMemory) Provision(_ context.Context, program string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[program]; !ok {
		s.tables[program] = nil
	}
	return nil
}

func (s *InMemory) List(_ context.Context, program string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := s.tables[program]
	out := make([]*models.Member, 0, len(members))
	for _, m := range members {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) FindByNationalID(_ context.Context, program, nationalID string) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m := s.find(program, nationalID); m != nil {
		cp := *m
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, program string, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(program, member.NationalID) != nil {
		return sentinel.ErrAlreadyUsed
	}
	cp := *member
	s.tables[program] = append(s.tables[program], &cp)
	return nil
}

func (s *InMemory) Execute(_ context.Context, program, nationalID string, mutate func(*models.Member) error) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(program, nationalID)
	if m == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	*m = cp
	return &cp, nil
}

func (s *InMemory) AppendMissing(_ context.Context, program string, candidates []*models.Member) ([]*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added []*models.Member
	for _, m := range candidates {
		if s.find(program, m.NationalID) != nil {
			continue
		}
		cp := *m
		s.tables[program] = append(s.tables[program], &cp)
		added = append(added, m)
	}
	return added, nil
}

func (s *InMemory) CountByProgram(ctx context.Context, program string) (int, int, error) {
	members, err := s.List(ctx, program)
	if err != nil {
		return 0, 0, err
	}
	return count(members)
}

func (s *InMemory) find(program, nationalID string) *models.Member {
	for _, m := range s.tables[program] {
		if pstrings.SameKey(m.NationalID, nationalID) {
			return m
		}
	}
	return nil
}
