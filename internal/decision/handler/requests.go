package handler

import (
	"strings"

	"polizaexpress/internal/decision"
	dErrors "polizaexpress/pkg/domain-errors"
)

// maxFieldLength bounds every raw fact; extracted values are short.
const maxFieldLength = 128

// EvaluateRequest is the HTTP request body for POST /eligibility/evaluate.
// Values are raw strings as an extractor or spreadsheet would produce them;
// the decision module normalizes them.
type EvaluateRequest struct {
	IdentityNumber     string `json:"identity_number"`
	VitalStatus        string `json:"vital_status"`
	DateOfDeath        string `json:"date_of_death"`
	ProductType        string `json:"product_type"`
	CreditPlan         string `json:"credit_plan"`
	Balance            string `json:"balance"`
	DisbursementDate   string `json:"disbursement_date"`
	DisbursementAmount string `json:"disbursement_amount"`
	CreditTermEnd      string `json:"credit_term_end"`
}

// Validate checks presence and size. Implements the Validatable interface
// for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	for _, f := range r.fields() {
		if len(*f.value) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, f.name+" is too long")
		}
		*f.value = strings.TrimSpace(*f.value)
	}

	// Required fields
	required := []struct {
		name  string
		value string
	}{
		{"identity_number", r.IdentityNumber},
		{"vital_status", r.VitalStatus},
		{"product_type", r.ProductType},
		{"balance", r.Balance},
		{"disbursement_date", r.DisbursementDate},
		{"disbursement_amount", r.DisbursementAmount},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.New(dErrors.CodeValidation, f.name+" is required")
		}
	}
	return nil
}

type requestField struct {
	name  string
	value *string
}

// fields lists the request fields in declaration order.
func (r *EvaluateRequest) fields() []requestField {
	return []requestField{
		{"identity_number", &r.IdentityNumber},
		{"vital_status", &r.VitalStatus},
		{"date_of_death", &r.DateOfDeath},
		{"product_type", &r.ProductType},
		{"credit_plan", &r.CreditPlan},
		{"balance", &r.Balance},
		{"disbursement_date", &r.DisbursementDate},
		{"disbursement_amount", &r.DisbursementAmount},
		{"credit_term_end", &r.CreditTermEnd},
	}
}

// RawFacts converts the validated request to the domain input.
func (r *EvaluateRequest) RawFacts() decision.RawFacts {
	return decision.RawFacts{
		IdentityNumber:     r.IdentityNumber,
		VitalStatus:        r.VitalStatus,
		DateOfDeath:        r.DateOfDeath,
		ProductType:        r.ProductType,
		CreditPlan:         r.CreditPlan,
		Balance:            r.Balance,
		DisbursementDate:   r.DisbursementDate,
		DisbursementAmount: r.DisbursementAmount,
		CreditTermEnd:      r.CreditTermEnd,
	}
}
