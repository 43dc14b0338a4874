package financial

import (
	"context"
	"sync"

	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

// InMemoryStore holds financial records in process.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore creates a store preloaded with seed.
func NewInMemoryStore(seed ...Record) *InMemoryStore {
	s := &InMemoryStore{records: make(map[string]Record, len(seed))}
	for _, r := range seed {
		s.records[r.IdentityNumber] = r
	}
	return s
}

func (s *InMemoryStore) FindByIdentity(_ context.Context, identityNumber id.IdentityNumber) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[identityNumber.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.IdentityNumber] = record
	return nil
}
