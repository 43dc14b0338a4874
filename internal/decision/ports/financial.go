package ports

import (
	"context"

	id "polizaexpress/pkg/domain"
)

//go:generate mockgen -source=financial.go -destination=mocks/financial_mock.go -package=mocks

// FinancialPort defines the interface for the financial product lookup.
type FinancialPort interface {
	// LookupFinancialFacts returns the product held by the person.
	LookupFinancialFacts(ctx context.Context, identityNumber id.IdentityNumber) (*FinancialRecord, error)
}

// FinancialRecord carries the product facts as the data store holds them.
// Values are raw strings; empty dates mean "not recorded".
type FinancialRecord struct {
	ProductType        string
	CreditPlan         string
	Balance            string
	DisbursementDate   string
	DisbursementAmount string
	CreditTermEnd      string
}
