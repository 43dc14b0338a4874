// Package financial looks up the financial product a person holds. Records
// are kept as exported from the core banking spreadsheet; values stay raw
// text and the decision module normalizes them.
package financial

// Record is one financial product row. Empty dates mean "not recorded".
type Record struct {
	IdentityNumber     string
	ProductType        string
	CreditPlan         string
	Balance            string
	DisbursementDate   string
	DisbursementAmount string
	CreditTermEnd      string
}

// DevSeed is the product loaded into the in-memory store in development. It
// belongs to the identity number the static document extractor returns.
var DevSeed = []Record{
	{
		IdentityNumber:     "1032323323",
		ProductType:        "CREDIT",
		CreditPlan:         "MOBILE_FIXED_CONSUMPTION",
		Balance:            "$12.500.000",
		DisbursementDate:   "15/03/2024",
		DisbursementAmount: "$30.000.000",
		CreditTermEnd:      "15/03/2029",
	},
}
