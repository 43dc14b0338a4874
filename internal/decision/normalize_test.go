package decision

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := civil.Date{Year: 2025, Month: 1, Day: 12}
	accepted := []string{
		"12/01/2025",
		"12-01-2025",
		"12.01.2025",
		"2025-01-12",
		"2025/01/12",
		"2025-1-12",
		" 12/01/2025 ",
		"12 de enero de 2025",
		"12 de Enero del 2025",
		"12 DE ENERO DE 2025",
	}
	for _, raw := range accepted {
		t.Run(raw, func(t *testing.T) {
			got, err := ParseDate(FieldDateOfDeath, raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("day comes first in slash dates", func(t *testing.T) {
		got, err := ParseDate(FieldDisbursementDate, "1/2/2024")
		require.NoError(t, err)
		assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 1}, got)
	})

	t.Run("accented month names fold", func(t *testing.T) {
		got, err := ParseDate(FieldDateOfDeath, "3 de Séptiembre de 2024")
		require.NoError(t, err)
		assert.Equal(t, civil.Date{Year: 2024, Month: 9, Day: 3}, got)
	})

	rejected := []struct {
		raw    string
		reason string
	}{
		{"", "date is required"},
		{"   ", "date is required"},
		{"31/02/2024", "not a calendar date"},
		{"2024-13-01", "not a calendar date"},
		{"12 de brumario de 2025", "unknown month name"},
		{"January 12, 2025", "unrecognised date format"},
		{"12/01/25", "unrecognised date format"},
		{"2025-01-12T00:00:00Z", "unrecognised date format"},
	}
	for _, tt := range rejected {
		t.Run("rejects "+tt.raw, func(t *testing.T) {
			_, err := ParseDate(FieldDateOfDeath, tt.raw)
			var invalid *InvalidFactError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, FieldDateOfDeath, invalid.Field)
			assert.Equal(t, tt.raw, invalid.RawValue)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"150000000", "150000000"},
		{"150.000.000", "150000000"},
		{"150,000,000", "150000000"},
		{"$150.000.000", "150000000"},
		{"COP 150.000.000", "150000000"},
		{"COP$ 1.500", "1500"},
		{"USD 1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"12,5", "12.5"},
		{"12.5", "12.5"},
		{"1,234", "1234"},
		{"1'000'000", "1000000"},
		{"+200", "200"},
		{"0", "0"},
		{"50 000 000 pesos", "50000000"},
		{"0,5", "0.5"},
		{"1.234.567,891", "1234567.891"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(FieldBalance, tt.raw)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	rejected := []struct {
		raw    string
		reason string
	}{
		{"", "amount is required"},
		{"$", "amount is required"},
		{"-5", "amount must not be negative"},
		{"(1.000)", "amount must not be negative"},
		{"abc", "amount is not numeric"},
		{"12a", "amount is not numeric"},
		{"1..000", "misplaced separators"},
		{".5", "misplaced separators"},
		{"1.000,00,0", "misplaced separators"},
		{"12,34,5", "misplaced separators"},
		{"0,001", "misplaced separators"},
		{"1.0000", "misplaced separators"},
		{"1234.567,8", "misplaced separators"},
		{"01.000", "misplaced separators"},
	}
	for _, tt := range rejected {
		t.Run("rejects "+tt.raw, func(t *testing.T) {
			_, err := ParseAmount(FieldDisbursementAmount, tt.raw)
			var invalid *InvalidFactError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, FieldDisbursementAmount, invalid.Field)
			assert.Equal(t, tt.reason, invalid.Reason)
		})
	}
}

func TestClassifyProduct(t *testing.T) {
	tests := map[string]ProductType{
		"CREDIT_CARD":          ProductCreditCard,
		"credit card":          ProductCreditCard,
		"Tarjeta de Crédito":   ProductCreditCard,
		"CREDIT":               ProductCredit,
		"Crédito":              ProductCredit,
		"préstamo":             ProductCredit,
		"OTHER":                ProductOther,
		"cuenta de ahorros":    ProductOther,
		"":                     ProductOther,
		"credit card platinum": ProductOther,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ClassifyProduct(raw), raw)
	}
}

func TestClassifyPlan(t *testing.T) {
	tests := map[string]CreditPlan{
		"MOBILE_FIXED_CONSUMPTION":          PlanMobileFixedConsumption,
		"Consumo Fijo Móvil":                PlanMobileFixedConsumption,
		"MOBILE_PAYROLL_CONSUMPTION":        PlanMobilePayrollConsumption,
		"libranza móvil":                    PlanMobilePayrollConsumption,
		"MOBILE_PRIVATE_VEHICLE":            PlanMobilePrivateVehicle,
		"Crédito Móvil Vehículo Particular": PlanMobilePrivateVehicle,
		"OTHER_PLAN":                        PlanOther,
		"hipotecario":                       PlanOther,
		"":                                  PlanOther,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ClassifyPlan(raw), raw)
	}
}

func TestParseVitalStatus(t *testing.T) {
	tests := map[string]VitalStatus{
		"fallecido":            VitalStatusDeceased,
		"FALLECIDA":            VitalStatusDeceased,
		"Cancelada por Muerte": VitalStatusDeceased,
		"DECEASED":             VitalStatusDeceased,
		"vigente":              VitalStatusAlive,
		"Vivo":                 VitalStatusAlive,
		"ALIVE":                VitalStatusAlive,
		"UNKNOWN":              VitalStatusUnknown,
		"en trámite":           VitalStatusUnknown,
		"":                     VitalStatusUnknown,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseVitalStatus(raw), raw)
	}
}

func validRaw() RawFacts {
	return RawFacts{
		IdentityNumber:     "1.032.323.323",
		VitalStatus:        "fallecido",
		DateOfDeath:        "12 de enero de 2025",
		ProductType:        "Crédito",
		CreditPlan:         "consumo fijo móvil",
		Balance:            "$12.500.000",
		DisbursementDate:   "15/03/2024",
		DisbursementAmount: "COP 30.000.000",
		CreditTermEnd:      "2029-03-15",
	}
}

func TestNormalize(t *testing.T) {
	t.Run("builds the aggregate", func(t *testing.T) {
		facts, err := Normalize(validRaw())
		require.NoError(t, err)

		assert.Equal(t, "1032323323", facts.IdentityNumber().String())
		assert.Equal(t, VitalStatusDeceased, facts.VitalStatus())
		death, ok := facts.DateOfDeath()
		assert.True(t, ok)
		assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 12}, death)
		assert.Equal(t, ProductCredit, facts.ProductType())
		assert.Equal(t, PlanMobileFixedConsumption, facts.CreditPlan())
		assert.True(t, decimal.NewFromInt(12_500_000).Equal(facts.Balance()))
		assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 15}, facts.DisbursementDate())
		assert.True(t, decimal.NewFromInt(30_000_000).Equal(facts.DisbursementAmount()))
		termEnd, ok := facts.CreditTermEnd()
		assert.True(t, ok)
		assert.Equal(t, civil.Date{Year: 2029, Month: 3, Day: 15}, termEnd)
	})

	t.Run("optional dates may be absent", func(t *testing.T) {
		raw := validRaw()
		raw.DateOfDeath = ""
		raw.CreditTermEnd = " "
		facts, err := Normalize(raw)
		require.NoError(t, err)

		_, hasDeath := facts.DateOfDeath()
		_, hasTermEnd := facts.CreditTermEnd()
		assert.False(t, hasDeath)
		assert.False(t, hasTermEnd)
	})

	t.Run("credit plan is dropped for non-credit products", func(t *testing.T) {
		raw := validRaw()
		raw.ProductType = "tarjeta de crédito"
		facts, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, ProductCreditCard, facts.ProductType())
		assert.Equal(t, CreditPlan(""), facts.CreditPlan())
	})

	t.Run("unknown credit plan becomes OTHER_PLAN", func(t *testing.T) {
		raw := validRaw()
		raw.CreditPlan = ""
		facts, err := Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, PlanOther, facts.CreditPlan())
	})

	failures := []struct {
		name   string
		mutate func(*RawFacts)
		field  Field
	}{
		{"empty identity", func(r *RawFacts) { r.IdentityNumber = "" }, FieldIdentityNumber},
		{"letters in identity", func(r *RawFacts) { r.IdentityNumber = "CC1032" }, FieldIdentityNumber},
		{"bad date of death", func(r *RawFacts) { r.DateOfDeath = "ayer" }, FieldDateOfDeath},
		{"missing disbursement date", func(r *RawFacts) { r.DisbursementDate = "" }, FieldDisbursementDate},
		{"bad term end", func(r *RawFacts) { r.CreditTermEnd = "31/04/2029" }, FieldCreditTermEnd},
		{"term end before disbursement", func(r *RawFacts) { r.CreditTermEnd = "2024-03-14" }, FieldCreditTermEnd},
		{"negative balance", func(r *RawFacts) { r.Balance = "-1" }, FieldBalance},
		{"non-numeric disbursement", func(r *RawFacts) { r.DisbursementAmount = "treinta" }, FieldDisbursementAmount},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Normalize(raw)
			var invalid *InvalidFactError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestInvalidFactErrorMessage(t *testing.T) {
	err := newInvalidFact(FieldBalance, "-5", "amount must not be negative")
	assert.Equal(t, `invalid balance "-5": amount must not be negative`, err.Error())
}
