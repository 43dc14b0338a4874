package decision

import (
	"context"
	"time"

	id "polizaexpress/pkg/domain"
)

// Store persists verdicts for auditability. Swap with concrete storage
// without touching the service.
type Store interface {
	Save(ctx context.Context, record VerdictRecord) error
	FindByCase(ctx context.Context, caseID id.CaseID) (*VerdictRecord, error)
}

// VerdictRecord is a stored verdict. The identity number is kept only as a
// hash.
type VerdictRecord struct {
	CaseID        id.CaseID
	SubjectIDHash string
	Verdict       Verdict
	EvaluatedAt   time.Time
}
