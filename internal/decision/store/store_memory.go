package store

import (
	"context"
	"sync"

	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

// InMemoryStore keeps verdicts in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	verdicts map[id.CaseID]decision.VerdictRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{verdicts: make(map[id.CaseID]decision.VerdictRecord)}
}

// Save stores the verdict of a case, replacing any earlier one.
func (s *InMemoryStore) Save(_ context.Context, record decision.VerdictRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Verdict.Checks = append([]decision.Check(nil), record.Verdict.Checks...)
	s.verdicts[record.CaseID] = record
	return nil
}

// FindByCase returns sentinel.ErrNotFound when the case has no verdict.
func (s *InMemoryStore) FindByCase(_ context.Context, caseID id.CaseID) (*decision.VerdictRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.verdicts[caseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}
