package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

const (
	upsertVerdictSQL = `
INSERT INTO verdicts (case_id, subject_id_hash, eligible, matched_rule, failed_precondition, reason, checks, evaluated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (case_id) DO UPDATE SET
	subject_id_hash = EXCLUDED.subject_id_hash,
	eligible = EXCLUDED.eligible,
	matched_rule = EXCLUDED.matched_rule,
	failed_precondition = EXCLUDED.failed_precondition,
	reason = EXCLUDED.reason,
	checks = EXCLUDED.checks,
	evaluated_at = EXCLUDED.evaluated_at`

	selectVerdictSQL = `
SELECT case_id, subject_id_hash, eligible, matched_rule, failed_precondition, reason, checks, evaluated_at
FROM verdicts
WHERE case_id = $1`
)

// PostgresStore persists verdicts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verdict store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, record decision.VerdictRecord) error {
	checks, err := json.Marshal(record.Verdict.Checks)
	if err != nil {
		return fmt.Errorf("marshal checks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, upsertVerdictSQL,
		uuid.UUID(record.CaseID),
		record.SubjectIDHash,
		record.Verdict.Eligible,
		string(record.Verdict.MatchedRule),
		string(record.Verdict.FailedPrecondition),
		record.Verdict.Reason,
		string(checks),
		record.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCase(ctx context.Context, caseID id.CaseID) (*decision.VerdictRecord, error) {
	var (
		rowID        uuid.UUID
		record       decision.VerdictRecord
		matchedRule  string
		precondition string
		checks       []byte
	)
	err := s.db.QueryRowContext(ctx, selectVerdictSQL, uuid.UUID(caseID)).Scan(
		&rowID,
		&record.SubjectIDHash,
		&record.Verdict.Eligible,
		&matchedRule,
		&precondition,
		&record.Verdict.Reason,
		&checks,
		&record.EvaluatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verdict: %w", err)
	}
	if len(checks) > 0 {
		if err := json.Unmarshal(checks, &record.Verdict.Checks); err != nil {
			return nil, fmt.Errorf("decode checks: %w", err)
		}
	}
	record.CaseID = id.CaseID(rowID)
	record.Verdict.MatchedRule = decision.MatchedRule(matchedRule)
	record.Verdict.FailedPrecondition = decision.FailedPrecondition(precondition)
	record.EvaluatedAt = record.EvaluatedAt.UTC()
	return &record, nil
}
