// Package cases holds claim cases from intake to verdict: the two uploaded
// documents, the evaluation status and the verdict once evaluated. Cases are
// short-lived; they expire after a retention window.
package cases

import (
	"time"

	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
)

// Status is where a case stands in its lifecycle.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusEvaluated Status = "evaluated"
	StatusFailed    Status = "failed"
)

// Upload field names, as the intake form names them.
const (
	FieldIdentityDocument = "cedula"
	FieldDeathCertificate = "defuncion"
)

// Document is one uploaded file.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (d Document) Size() int64 {
	return int64(len(d.Content))
}

// Case is a claim under evaluation.
type Case struct {
	ID               id.CaseID
	Status           Status
	IdentityDocument Document
	DeathCertificate Document
	CreatedAt        time.Time
	ExpiresAt        time.Time

	// Set once the case has been evaluated (or failed to).
	Verdict       *decision.Verdict
	EvaluatedAt   *time.Time
	FailureReason string
}

// IsExpiredAt reports whether the case is past its retention window.
func (c *Case) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
