package adapters

import (
	"context"

	"polizaexpress/internal/decision/ports"
	"polizaexpress/internal/evidence/financial"
	id "polizaexpress/pkg/domain"
)

// FinancialAdapter implements ports.FinancialPort with the financial service.
type FinancialAdapter struct {
	financial *financial.Service
}

func NewFinancialAdapter(financial *financial.Service) ports.FinancialPort {
	return &FinancialAdapter{financial: financial}
}

func (a *FinancialAdapter) LookupFinancialFacts(ctx context.Context, identityNumber id.IdentityNumber) (*ports.FinancialRecord, error) {
	record, err := a.financial.Lookup(ctx, identityNumber)
	if err != nil {
		return nil, err
	}
	return &ports.FinancialRecord{
		ProductType:        record.ProductType,
		CreditPlan:         record.CreditPlan,
		Balance:            record.Balance,
		DisbursementDate:   record.DisbursementDate,
		DisbursementAmount: record.DisbursementAmount,
		CreditTermEnd:      record.CreditTermEnd,
	}, nil
}
