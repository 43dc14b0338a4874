package decision

// MatchedRule identifies the eligibility rule that produced a positive verdict.
type MatchedRule string

const (
	RuleOne   MatchedRule = "RULE_1"
	RuleTwo   MatchedRule = "RULE_2"
	RuleThree MatchedRule = "RULE_3"
	RuleNone  MatchedRule = "NONE"
)

// FailedPrecondition names the universal precondition that short-circuited
// evaluation, or PreconditionNone.
type FailedPrecondition string

const (
	PreconditionNone            FailedPrecondition = "NONE"
	PreconditionNotDeceased     FailedPrecondition = "NOT_DECEASED"
	PreconditionOutsideValidity FailedPrecondition = "OUTSIDE_VALIDITY_WINDOW"
)

// Criterion is a single comparison a rule or precondition performs.
type Criterion string

const (
	CriterionVitalStatus            Criterion = "vital_status"
	CriterionDateOfDeath            Criterion = "date_of_death"
	CriterionCreditTermEnd          Criterion = "credit_term_end"
	CriterionDeathAfterDisbursement Criterion = "death_after_disbursement"
	CriterionDeathBeforeTermEnd     Criterion = "death_before_term_end"
	CriterionCardBalance            Criterion = "card_balance"
	CriterionCreditPlan             Criterion = "credit_plan"
	CriterionDaysSinceDisbursement  Criterion = "days_since_disbursement"
	CriterionDisbursementAmount     Criterion = "disbursement_amount"
	CriterionBalance                Criterion = "balance"
)

// Comparison is the operator a Check applies between Actual and Limit.
type Comparison string

const (
	CompareEqual       Comparison = "="
	CompareAtMost      Comparison = "<="
	CompareAtLeast     Comparison = ">="
	CompareLessThan    Comparison = "<"
	CompareGreaterThan Comparison = ">"
	CompareMember      Comparison = "in"
	ComparePresent     Comparison = "present"
)

// Check records one evaluated threshold. Limit and Actual are rendered in
// canonical form: decimal strings for money, integers for day counts, ISO
// dates, enum identifiers otherwise.
type Check struct {
	Rule       MatchedRule `json:"rule"`
	Criterion  Criterion   `json:"criterion"`
	Comparison Comparison  `json:"comparison"`
	Limit      string      `json:"limit,omitempty"`
	Actual     string      `json:"actual,omitempty"`
	Passed     bool        `json:"passed"`
}

// Verdict is the outcome of Evaluate. It is built once and never mutated.
//
// Checks holds the comparisons that decided the outcome: the matched rule's
// checks when eligible, the failing precondition check, or the checks of
// every rule the product was routed to when no rule matched.
type Verdict struct {
	Eligible           bool
	MatchedRule        MatchedRule
	FailedPrecondition FailedPrecondition
	Reason             string
	Checks             []Check
}

// Missed returns the checks that did not pass.
func (v Verdict) Missed() []Check {
	var missed []Check
	for _, c := range v.Checks {
		if !c.Passed {
			missed = append(missed, c)
		}
	}
	return missed
}
