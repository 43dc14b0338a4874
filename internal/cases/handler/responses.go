package handler

import (
	"time"

	"polizaexpress/internal/cases"
	"polizaexpress/internal/decision"
	dhandler "polizaexpress/internal/decision/handler"
)

// DocumentResponse describes an uploaded document without its content.
type DocumentResponse struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// CaseResponse is the HTTP representation of a case.
type CaseResponse struct {
	CaseID        string                    `json:"case_id"`
	Status        string                    `json:"status"`
	Documents     []DocumentResponse        `json:"documents"`
	CreatedAt     time.Time                 `json:"created_at"`
	ExpiresAt     time.Time                 `json:"expires_at"`
	Verdict       *dhandler.VerdictResponse `json:"verdict,omitempty"`
	EvaluatedAt   *time.Time                `json:"evaluated_at,omitempty"`
	FailureReason string                    `json:"failure_reason,omitempty"`
	Steps         []StepResponse            `json:"steps,omitempty"`
}

// StepResponse reports one fact-gathering step of an evaluation.
type StepResponse struct {
	Step       int    `json:"step"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	Skipped    bool   `json:"skipped"`
	DurationMS int64  `json:"duration_ms"`
}

// ListResponse is the HTTP response for GET /cases.
type ListResponse struct {
	Cases []CaseResponse `json:"cases"`
	Total int            `json:"total"`
}

// FromCase converts a case, rendering any verdict text in lang.
func FromCase(c *cases.Case, lang decision.Language) *CaseResponse {
	resp := &CaseResponse{
		CaseID: c.ID.String(),
		Status: string(c.Status),
		Documents: []DocumentResponse{
			fromDocument(cases.FieldIdentityDocument, c.IdentityDocument),
			fromDocument(cases.FieldDeathCertificate, c.DeathCertificate),
		},
		CreatedAt:     c.CreatedAt,
		ExpiresAt:     c.ExpiresAt,
		EvaluatedAt:   c.EvaluatedAt,
		FailureReason: c.FailureReason,
	}
	if c.Verdict != nil {
		v := dhandler.FromVerdict(*c.Verdict, lang)
		resp.Verdict = &v
	}
	return resp
}

// FromEvaluation converts a freshly evaluated case including its steps.
func FromEvaluation(c *cases.Case, eval *decision.Evaluation, lang decision.Language) *CaseResponse {
	resp := FromCase(c, lang)
	resp.Steps = make([]StepResponse, 0, len(eval.Steps))
	for _, s := range eval.Steps {
		resp.Steps = append(resp.Steps, StepResponse{
			Step:       int(s.Step),
			Name:       s.Step.String(),
			Source:     s.Source,
			Skipped:    s.Skipped,
			DurationMS: s.Duration.Milliseconds(),
		})
	}
	return resp
}

// FromCases converts a case listing.
func FromCases(all []*cases.Case, lang decision.Language) *ListResponse {
	out := make([]CaseResponse, 0, len(all))
	for _, c := range all {
		out = append(out, *FromCase(c, lang))
	}
	return &ListResponse{Cases: out, Total: len(out)}
}

func fromDocument(field string, d cases.Document) DocumentResponse {
	return DocumentResponse{
		Field:       field,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Size:        d.Size(),
	}
}
