// Package postgres stores audit events in the audit_events table so the
// evaluation trail of a case can be queried after the fact.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
)

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an event. Events without a case (process-level events) are
// stored with a NULL case_id.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	var caseID *uuid.UUID
	if !event.CaseID.IsNil() {
		cid := uuid.UUID(event.CaseID)
		caseID = &cid
	}

	query := `
		INSERT INTO audit_events (
			case_id, category, action, step, decision, reason,
			source, request_id, subject_id_hash, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		caseID,
		string(category),
		event.Action,
		event.Step,
		event.Decision,
		event.Reason,
		event.Source,
		event.RequestID,
		event.SubjectIDHash,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCase returns the events of a case in insertion order.
func (s *Store) ListByCase(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	query := `
		SELECT case_id, category, action, step, decision, reason,
			   source, request_id, subject_id_hash, occurred_at
		FROM audit_events
		WHERE case_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			caseID   uuid.NullUUID
			category string
		)
		if err := rows.Scan(
			&caseID,
			&category,
			&event.Action,
			&event.Step,
			&event.Decision,
			&event.Reason,
			&event.Source,
			&event.RequestID,
			&event.SubjectIDHash,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if caseID.Valid {
			event.CaseID = id.CaseID(caseID.UUID)
		}
		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
