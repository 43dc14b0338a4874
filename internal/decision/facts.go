package decision

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	id "polizaexpress/pkg/domain"
)

// VitalStatus is the civil-registry status of the insured person.
type VitalStatus string

const (
	VitalStatusAlive    VitalStatus = "ALIVE"
	VitalStatusDeceased VitalStatus = "DECEASED"
	VitalStatusUnknown  VitalStatus = "UNKNOWN"
)

// ProductType is the closed set of financial products the rules recognise.
type ProductType string

const (
	ProductCreditCard ProductType = "CREDIT_CARD"
	ProductCredit     ProductType = "CREDIT"
	ProductOther      ProductType = "OTHER"
)

// CreditPlan refines ProductCredit. It is empty for every other product.
type CreditPlan string

const (
	PlanMobileFixedConsumption   CreditPlan = "MOBILE_FIXED_CONSUMPTION"
	PlanMobilePayrollConsumption CreditPlan = "MOBILE_PAYROLL_CONSUMPTION"
	PlanMobilePrivateVehicle     CreditPlan = "MOBILE_PRIVATE_VEHICLE"
	PlanOther                    CreditPlan = "OTHER_PLAN"
)

// IsMobile reports whether the plan is one of the mobile plans covered by
// the credit rule.
func (p CreditPlan) IsMobile() bool {
	switch p {
	case PlanMobileFixedConsumption, PlanMobilePayrollConsumption, PlanMobilePrivateVehicle:
		return true
	}
	return false
}

// RawFacts are the strings produced by the upstream extractors and lookups,
// before normalization. Empty optional dates mean "not provided".
type RawFacts struct {
	IdentityNumber     string
	VitalStatus        string
	DateOfDeath        string
	ProductType        string
	CreditPlan         string
	Balance            string
	DisbursementDate   string
	DisbursementAmount string
	CreditTermEnd      string
}

// PersonFacts is the validated aggregate consumed by Evaluate. It is a value
// type with unexported fields; once built by Normalize or NewPersonFacts it
// cannot change.
//
// Dates are naive calendar dates. A zero civil.Date means the date is absent.
type PersonFacts struct {
	identityNumber     id.IdentityNumber
	vitalStatus        VitalStatus
	dateOfDeath        civil.Date
	productType        ProductType
	creditPlan         CreditPlan
	balance            decimal.Decimal
	disbursementDate   civil.Date
	disbursementAmount decimal.Decimal
	creditTermEnd      civil.Date
}

// FactsInput carries already-typed values into NewPersonFacts.
type FactsInput struct {
	IdentityNumber     id.IdentityNumber
	VitalStatus        VitalStatus
	DateOfDeath        civil.Date
	ProductType        ProductType
	CreditPlan         CreditPlan
	Balance            decimal.Decimal
	DisbursementDate   civil.Date
	DisbursementAmount decimal.Decimal
	CreditTermEnd      civil.Date
}

// NewPersonFacts validates typed input and builds the aggregate.
//
// Invariants:
//   - identity number is non-empty
//   - disbursement date is present and valid
//   - amounts are non-negative
//   - disbursement date <= credit term end when the latter is present
//   - credit plan is set only for credit products (OTHER_PLAN when unrecognised)
func NewPersonFacts(in FactsInput) (PersonFacts, error) {
	if in.IdentityNumber.IsZero() {
		return PersonFacts{}, newInvalidFact(FieldIdentityNumber, "", "identity number is required")
	}
	if !in.DisbursementDate.IsValid() {
		return PersonFacts{}, newInvalidFact(FieldDisbursementDate, in.DisbursementDate.String(), "disbursement date is required")
	}
	if in.DateOfDeath != (civil.Date{}) && !in.DateOfDeath.IsValid() {
		return PersonFacts{}, newInvalidFact(FieldDateOfDeath, in.DateOfDeath.String(), "not a calendar date")
	}
	if in.CreditTermEnd != (civil.Date{}) {
		if !in.CreditTermEnd.IsValid() {
			return PersonFacts{}, newInvalidFact(FieldCreditTermEnd, in.CreditTermEnd.String(), "not a calendar date")
		}
		if in.CreditTermEnd.Before(in.DisbursementDate) {
			return PersonFacts{}, newInvalidFact(FieldCreditTermEnd, in.CreditTermEnd.String(), "credit term ends before the disbursement date")
		}
	}
	if in.Balance.IsNegative() {
		return PersonFacts{}, newInvalidFact(FieldBalance, in.Balance.String(), "amount must not be negative")
	}
	if in.DisbursementAmount.IsNegative() {
		return PersonFacts{}, newInvalidFact(FieldDisbursementAmount, in.DisbursementAmount.String(), "amount must not be negative")
	}

	status := in.VitalStatus
	switch status {
	case VitalStatusAlive, VitalStatusDeceased, VitalStatusUnknown:
	default:
		status = VitalStatusUnknown
	}

	product := in.ProductType
	switch product {
	case ProductCreditCard, ProductCredit, ProductOther:
	default:
		product = ProductOther
	}

	plan := in.CreditPlan
	if product != ProductCredit {
		plan = ""
	} else if !plan.IsMobile() {
		plan = PlanOther
	}

	return PersonFacts{
		identityNumber:     in.IdentityNumber,
		vitalStatus:        status,
		dateOfDeath:        in.DateOfDeath,
		productType:        product,
		creditPlan:         plan,
		balance:            in.Balance,
		disbursementDate:   in.DisbursementDate,
		disbursementAmount: in.DisbursementAmount,
		creditTermEnd:      in.CreditTermEnd,
	}, nil
}

func (f PersonFacts) IdentityNumber() id.IdentityNumber { return f.identityNumber }
func (f PersonFacts) VitalStatus() VitalStatus { return f.vitalStatus }
func (f PersonFacts) ProductType() ProductType { return f.productType }
func (f PersonFacts) CreditPlan() CreditPlan { return f.creditPlan }
func (f PersonFacts) Balance() decimal.Decimal { return f.balance }
func (f PersonFacts) DisbursementDate() civil.Date { return f.disbursementDate }
func (f PersonFacts) DisbursementAmount() decimal.Decimal { return f.disbursementAmount }

// DateOfDeath returns the claim date and whether it is present.
func (f PersonFacts) DateOfDeath() (civil.Date, bool) {
	return f.dateOfDeath, f.dateOfDeath.IsValid()
}

// CreditTermEnd returns the end of the validity window and whether it is present.
func (f PersonFacts) CreditTermEnd() (civil.Date, bool) {
	return f.creditTermEnd, f.creditTermEnd.IsValid()
}
