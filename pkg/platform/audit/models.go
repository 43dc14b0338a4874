package audit

import (
	"context"
	"time"

	id "polizaexpress/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// every step that contributes a fact to an eligibility decision, and the
	// decision itself.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for operational visibility,
	// such as case intake and cleanup.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	CaseID    id.CaseID
	Action    string
	// Step is the position of the action in the evaluation sequence (1-based);
	// zero for events outside the sequence.
	Step     int
	Decision string
	Reason   string
	// Source names the collaborator that produced the fact (registry,
	// vision service, financial store).
	Source    string
	RequestID string
	// SubjectIDHash is a SHA-256 hash of the identity number being evaluated.
	// Used for traceability without storing raw PII.
	SubjectIDHash string
}

type AuditEvent string

const (
	// Evaluation sequence, in mandatory order
	EventIdentityExtracted   AuditEvent = "identity_number_extracted"
	EventVitalStatusChecked  AuditEvent = "vital_status_checked"
	EventDeathDateExtracted  AuditEvent = "date_of_death_extracted"
	EventFinancialsRetrieved AuditEvent = "financial_facts_retrieved"
	EventEligibilityDecided  AuditEvent = "eligibility_evaluated"

	// Case lifecycle
	EventCaseCreated AuditEvent = "case_created"
	EventCaseDeleted AuditEvent = "case_deleted"
	EventCaseExpired AuditEvent = "case_expired"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityExtracted:   CategoryCompliance,
	EventVitalStatusChecked:  CategoryCompliance,
	EventDeathDateExtracted:  CategoryCompliance,
	EventFinancialsRetrieved: CategoryCompliance,
	EventEligibilityDecided:  CategoryCompliance,

	EventCaseCreated: CategoryOperations,
	EventCaseDeleted: CategoryOperations,
	EventCaseExpired: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Appender accepts audit events. Sinks that cannot be queried (a Kafka
// topic) implement only this.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Store persists audit events and lists them per case.
type Store interface {
	Appender
	ListByCase(ctx context.Context, caseID id.CaseID) ([]Event, error)
}
