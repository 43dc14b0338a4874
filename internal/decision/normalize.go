package decision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	id "polizaexpress/pkg/domain"
)

// Field names a PersonFacts field in InvalidFactError.
type Field string

const (
	FieldIdentityNumber     Field = "identity_number"
	FieldVitalStatus        Field = "vital_status"
	FieldDateOfDeath        Field = "date_of_death"
	FieldProductType        Field = "product_type"
	FieldCreditPlan         Field = "credit_plan"
	FieldBalance            Field = "balance"
	FieldDisbursementDate   Field = "disbursement_date"
	FieldDisbursementAmount Field = "disbursement_amount"
	FieldCreditTermEnd      Field = "credit_term_end"
)

// InvalidFactError reports a raw value that could not be normalized. The
// caller recovers by requesting the extraction again; values are never
// coerced.
type InvalidFactError struct {
	Field    Field
	RawValue string
	Reason   string
}

func (e *InvalidFactError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.RawValue, e.Reason)
}

func newInvalidFact(field Field, raw, reason string) *InvalidFactError {
	return &InvalidFactError{Field: field, RawValue: raw, Reason: reason}
}

var (
	isoDatePattern    = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dayFirstPattern   = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})$`)
	spanishLongDate   = regexp.MustCompile(`^(\d{1,2}) de ([a-z]+) (?:de|del) (\d{4})$`)
	amountBodyPattern = regexp.MustCompile(`^[0-9.,]+$`)
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// currencyTokens are stripped from amounts before parsing. Longer tokens
// come first so "COP$" is removed whole.
var currencyTokens = []string{"cop$", "us$", "cop", "usd", "eur", "pesos", "$", "€"}

// ParseDate parses DD/MM/YYYY, YYYY-MM-DD and their separator variants, plus
// the Spanish long form printed on death certificates ("12 de enero de 2025").
func ParseDate(field Field, raw string) (civil.Date, error) {
	s := foldLabel(raw)
	if s == "" {
		return civil.Date{}, newInvalidFact(field, raw, "date is required")
	}

	var year, day int
	var month time.Month
	switch {
	case isoDatePattern.MatchString(s):
		m := isoDatePattern.FindStringSubmatch(s)
		year, month, day = atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
	case dayFirstPattern.MatchString(s):
		m := dayFirstPattern.FindStringSubmatch(s)
		day, month, year = atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
	case spanishLongDate.MatchString(s):
		m := spanishLongDate.FindStringSubmatch(s)
		mon, ok := spanishMonths[m[2]]
		if !ok {
			return civil.Date{}, newInvalidFact(field, raw, "unknown month name")
		}
		day, month, year = atoi(m[1]), mon, atoi(m[3])
	default:
		return civil.Date{}, newInvalidFact(field, raw, "unrecognised date format")
	}

	d := civil.Date{Year: year, Month: month, Day: day}
	if !d.IsValid() {
		return civil.Date{}, newInvalidFact(field, raw, "not a calendar date")
	}
	return d, nil
}

// parseOptionalDate treats an empty value as "absent" rather than invalid.
func parseOptionalDate(field Field, raw string) (civil.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return civil.Date{}, nil
	}
	return ParseDate(field, raw)
}

// ParseAmount parses a non-negative monetary amount. Currency symbols and
// codes are stripped. Thousands separators may be "." or ","; when both
// appear the rightmost one is the decimal separator, and a lone separator
// followed by exactly three digits is read as a thousands separator. Badly
// grouped digits are rejected rather than reshaped.
func ParseAmount(field Field, raw string) (decimal.Decimal, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' {
			return -1
		}
		return r
	}, s)

	if s == "" {
		return decimal.Decimal{}, newInvalidFact(field, raw, "amount is required")
	}
	if strings.HasPrefix(s, "-") || (strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")) {
		return decimal.Decimal{}, newInvalidFact(field, raw, "amount must not be negative")
	}
	s = strings.TrimPrefix(s, "+")
	if !amountBodyPattern.MatchString(s) {
		return decimal.Decimal{}, newInvalidFact(field, raw, "amount is not numeric")
	}

	cleaned, ok := stripSeparators(s)
	if !ok {
		return decimal.Decimal{}, newInvalidFact(field, raw, "misplaced separators")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, newInvalidFact(field, raw, "amount is not numeric")
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, newInvalidFact(field, raw, "amount must not be negative")
	}
	return amount, nil
}

// stripSeparators removes thousands separators and rewrites the decimal
// separator, if any, to ".". Thousands grouping must be well formed: a first
// group of one to three digits without a leading zero, then groups of exactly
// three digits.
func stripSeparators(s string) (string, bool) {
	if s[0] == '.' || s[0] == ',' || s[len(s)-1] == '.' || s[len(s)-1] == ',' {
		return "", false
	}
	if strings.Contains(s, "..") || strings.Contains(s, ",,") || strings.Contains(s, ".,") || strings.Contains(s, ",.") {
		return "", false
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var decimalSep byte
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalSep = '.'
		if lastComma > lastDot {
			decimalSep = ','
		}
		if strings.Count(s, string(decimalSep)) > 1 {
			return "", false
		}
	case lastDot >= 0:
		sep, ok := loneSeparator(s, '.', lastDot)
		if !ok {
			return "", false
		}
		decimalSep = sep
	case lastComma >= 0:
		sep, ok := loneSeparator(s, ',', lastComma)
		if !ok {
			return "", false
		}
		decimalSep = sep
	}

	whole, fraction := s, ""
	if decimalSep != 0 {
		i := strings.LastIndexByte(s, decimalSep)
		whole, fraction = s[:i], s[i+1:]
	}
	if !wellGrouped(whole) {
		return "", false
	}

	digits := strings.NewReplacer(".", "", ",", "").Replace(whole)
	if fraction != "" {
		digits += "." + fraction
	}
	return digits, true
}

// loneSeparator decides the role of the only separator kind in s. A single
// occurrence followed by one or two digits is a decimal separator; followed
// by three it groups thousands. Anything longer is ambiguous.
func loneSeparator(s string, sep byte, last int) (byte, bool) {
	if strings.Count(s, string(sep)) > 1 {
		return 0, true
	}
	switch tail := len(s) - last - 1; {
	case tail == 3:
		return 0, true
	case tail < 3:
		return sep, true
	default:
		return 0, false
	}
}

func wellGrouped(whole string) bool {
	groups := strings.FieldsFunc(whole, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) == 1 {
		return true
	}
	first := groups[0]
	if len(first) > 3 || first[0] == '0' {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

var productVocabulary = map[string]ProductType{
	"credit card":        ProductCreditCard,
	"tarjeta de credito": ProductCreditCard,
	"tarjeta credito":    ProductCreditCard,
	"tarjeta":            ProductCreditCard,
	"credit":             ProductCredit,
	"credito":            ProductCredit,
	"loan":               ProductCredit,
	"prestamo":           ProductCredit,
	"other":              ProductOther,
	"otro":               ProductOther,
}

var planVocabulary = map[string]CreditPlan{
	"mobile fixed consumption":          PlanMobileFixedConsumption,
	"consumo fijo movil":                PlanMobileFixedConsumption,
	"movil consumo fijo":                PlanMobileFixedConsumption,
	"credito movil consumo fijo":        PlanMobileFixedConsumption,
	"mobile payroll consumption":        PlanMobilePayrollConsumption,
	"consumo libranza movil":            PlanMobilePayrollConsumption,
	"movil consumo libranza":            PlanMobilePayrollConsumption,
	"libranza movil":                    PlanMobilePayrollConsumption,
	"credito movil consumo libranza":    PlanMobilePayrollConsumption,
	"mobile private vehicle":            PlanMobilePrivateVehicle,
	"vehiculo particular movil":         PlanMobilePrivateVehicle,
	"movil vehiculo particular":         PlanMobilePrivateVehicle,
	"credito movil vehiculo particular": PlanMobilePrivateVehicle,
	"other plan":                        PlanOther,
}

var vitalVocabulary = map[string]VitalStatus{
	"deceased":             VitalStatusDeceased,
	"dead":                 VitalStatusDeceased,
	"fallecido":            VitalStatusDeceased,
	"fallecida":            VitalStatusDeceased,
	"muerto":               VitalStatusDeceased,
	"muerta":               VitalStatusDeceased,
	"cancelada por muerte": VitalStatusDeceased,
	"alive":                VitalStatusAlive,
	"vivo":                 VitalStatusAlive,
	"viva":                 VitalStatusAlive,
	"vigente":              VitalStatusAlive,
	"unknown":              VitalStatusUnknown,
}

// ClassifyProduct maps a free-text product label onto the closed product
// set. Matching is exact after case and accent folding; anything else is
// ProductOther.
func ClassifyProduct(raw string) ProductType {
	if p, ok := productVocabulary[foldLabel(raw)]; ok {
		return p
	}
	return ProductOther
}

// ClassifyPlan maps a free-text credit plan label onto the closed plan set.
// Unrecognised or empty labels are PlanOther.
func ClassifyPlan(raw string) CreditPlan {
	if p, ok := planVocabulary[foldLabel(raw)]; ok {
		return p
	}
	return PlanOther
}

// ParseVitalStatus maps a registry status phrase onto VitalStatus. Unknown
// phrases are VitalStatusUnknown, which fails the vital-status precondition.
func ParseVitalStatus(raw string) VitalStatus {
	if s, ok := vitalVocabulary[foldLabel(raw)]; ok {
		return s
	}
	return VitalStatusUnknown
}

// Normalize converts raw upstream strings into PersonFacts. It performs no
// I/O and every failure is an *InvalidFactError.
func Normalize(raw RawFacts) (PersonFacts, error) {
	identity, err := id.ParseIdentityNumber(raw.IdentityNumber)
	if err != nil {
		return PersonFacts{}, newInvalidFact(FieldIdentityNumber, raw.IdentityNumber, "identity number must be 1-15 digits")
	}
	dateOfDeath, err := parseOptionalDate(FieldDateOfDeath, raw.DateOfDeath)
	if err != nil {
		return PersonFacts{}, err
	}
	disbursementDate, err := ParseDate(FieldDisbursementDate, raw.DisbursementDate)
	if err != nil {
		return PersonFacts{}, err
	}
	termEnd, err := parseOptionalDate(FieldCreditTermEnd, raw.CreditTermEnd)
	if err != nil {
		return PersonFacts{}, err
	}
	balance, err := ParseAmount(FieldBalance, raw.Balance)
	if err != nil {
		return PersonFacts{}, err
	}
	disbursed, err := ParseAmount(FieldDisbursementAmount, raw.DisbursementAmount)
	if err != nil {
		return PersonFacts{}, err
	}

	product := ClassifyProduct(raw.ProductType)
	var plan CreditPlan
	if product == ProductCredit {
		plan = ClassifyPlan(raw.CreditPlan)
	}

	return NewPersonFacts(FactsInput{
		IdentityNumber:     identity,
		VitalStatus:        ParseVitalStatus(raw.VitalStatus),
		DateOfDeath:        dateOfDeath,
		ProductType:        product,
		CreditPlan:         plan,
		Balance:            balance,
		DisbursementDate:   disbursementDate,
		DisbursementAmount: disbursed,
		CreditTermEnd:      termEnd,
	})
}

// foldLabel lowercases, strips accents, turns "_" and "-" between words into
// spaces and collapses whitespace. Transformers are stateful, so a fresh
// chain is built per call.
func foldLabel(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, raw)
	if err != nil {
		s = raw
	}
	s = cases.Fold().String(s)
	s = strings.NewReplacer("_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
