package handler

import (
	"time"

	"polizaexpress/internal/decision"
)

// VerdictResponse is the HTTP representation of a verdict.
type VerdictResponse struct {
	Eligible           bool             `json:"eligible"`
	MatchedRule        string           `json:"matched_rule"`
	FailedPrecondition string           `json:"failed_precondition"`
	Reason             string           `json:"reason"`
	Text               string           `json:"text"`
	Checks             []decision.Check `json:"checks"`
}

// EvaluateResponse is the HTTP response for POST /eligibility/evaluate.
type EvaluateResponse struct {
	Verdict     VerdictResponse `json:"verdict"`
	Language    string          `json:"language"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// StoredVerdictResponse is the HTTP response for GET /eligibility/verdicts/{case_id}.
type StoredVerdictResponse struct {
	CaseID      string          `json:"case_id"`
	Verdict     VerdictResponse `json:"verdict"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}

// FromVerdict converts a domain verdict, rendering its text in lang.
func FromVerdict(v decision.Verdict, lang decision.Language) VerdictResponse {
	checks := v.Checks
	if checks == nil {
		checks = []decision.Check{}
	}
	return VerdictResponse{
		Eligible:           v.Eligible,
		MatchedRule:        string(v.MatchedRule),
		FailedPrecondition: string(v.FailedPrecondition),
		Reason:             v.Reason,
		Text:               decision.Format(v, lang),
		Checks:             checks,
	}
}

// FromEvaluation converts a domain evaluation to an HTTP response.
func FromEvaluation(eval *decision.Evaluation, lang decision.Language) *EvaluateResponse {
	return &EvaluateResponse{
		Verdict:     FromVerdict(eval.Verdict, lang),
		Language:    string(lang),
		EvaluatedAt: eval.EvaluatedAt,
	}
}

// FromRecord converts a stored verdict to an HTTP response.
func FromRecord(record *decision.VerdictRecord, lang decision.Language) *StoredVerdictResponse {
	return &StoredVerdictResponse{
		CaseID:      record.CaseID.String(),
		Verdict:     FromVerdict(record.Verdict, lang),
		EvaluatedAt: record.EvaluatedAt,
	}
}
