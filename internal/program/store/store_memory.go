package store

import (
	"context"
	"sync"

	"programtrack/internal/program/models"
	"programtrack/pkg/platform/sentinel"
	pstrings "programtrack/pkg/platform/strings"
)

// InMemory is a registry for tests and throwaway runs. Insertion order is kept.
type InMemory struct {
	mu       sync.RWMutex
	programs []*models.Program
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) ListAll(_ context.Context) ([]*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemory) FindByName(_ context.Context, englishName string) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.find(englishName); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Create(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(program.EnglishName) != nil {
		return sentinel.ErrAlreadyUsed
	}
	cp := *program
	s.programs = append(s.programs, &cp)
	return nil
}

func (s *InMemory) Execute(_ context.Context, englishName string, mutate func(*models.Program) error) (*models.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.find(englishName)
	if p == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	*p = cp
	return &cp, nil
}

func (s *InMemory) find(englishName string) *models.Program {
	for _, p := range s.programs {
		if pstrings.SameKey(p.EnglishName, englishName) {
			return p
		}
	}
	return nil
}
