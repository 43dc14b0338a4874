package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"polizaexpress/internal/cases"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

// InMemoryStore keeps cases in process. Uploaded documents are lost on
// restart.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[id.CaseID]cases.Case
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{cases: make(map[id.CaseID]cases.Case)}
}

func (s *InMemoryStore) Save(_ context.Context, c *cases.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = *c
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, c *cases.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.cases[c.ID] = *c
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, caseID id.CaseID) (*cases.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (s *InMemoryStore) Delete(_ context.Context, caseID id.CaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[caseID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.cases, caseID)
	return nil
}

// List returns every case, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]*cases.Case, error) {
	s.mu.RLock()
	out := make([]*cases.Case, 0, len(s.cases))
	for _, c := range s.cases {
		c := c
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// RemoveExpiredAt deletes the cases expired as of now and returns their IDs.
func (s *InMemoryStore) RemoveExpiredAt(_ context.Context, now time.Time) ([]id.CaseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []id.CaseID
	for caseID, c := range s.cases {
		if c.IsExpiredAt(now) {
			delete(s.cases, caseID)
			removed = append(removed, caseID)
		}
	}
	return removed, nil
}
