package decision

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Rule thresholds. Rule 1's ceiling is inclusive; the Rule 2 and Rule 3
// limits are exclusive.
var (
	cardBalanceCeiling      = decimal.NewFromInt(200_000_000)
	creditDisbursementLimit = decimal.NewFromInt(50_000_000)
	generalBalanceLimit     = decimal.NewFromInt(50_000_000)
)

const (
	creditMinDaysSinceDisbursement  = 60
	generalMinDaysSinceDisbursement = 730
)

// Evaluate decides eligibility for a single case.
// This is pure domain logic - no I/O, no side effects, no shared state.
//
// Evaluation order (fail-fast):
//  1. Precondition A: the person is DECEASED
//  2. Precondition B: disbursement date <= date of death <= credit term end
//  3. Rules 1, 2 and 3 in precedence order; the first match wins
//
// Missing dates fail precondition B. Every outcome carries a reason.
func Evaluate(facts PersonFacts) Verdict {
	if facts.vitalStatus != VitalStatusDeceased {
		return rejectNotDeceased(facts.vitalStatus)
	}

	if check := validityWindowCheck(facts); !check.Passed {
		return finish(Verdict{
			MatchedRule:        RuleNone,
			FailedPrecondition: PreconditionOutsideValidity,
			Checks:             []Check{check},
		})
	}

	// Both dates are present once precondition B holds.
	gap := facts.dateOfDeath.DaysSince(facts.disbursementDate)

	results := []ruleResult{
		evaluateCardRule(facts),
		evaluateMobileCreditRule(facts, gap),
		evaluateGeneralRule(facts, gap),
	}
	for _, r := range results {
		if r.matched() {
			return finish(Verdict{
				Eligible:           true,
				MatchedRule:        r.rule,
				FailedPrecondition: PreconditionNone,
				Checks:             r.checks,
			})
		}
	}

	// No match: report the thresholds of every rule the product routes to.
	var checks []Check
	for _, r := range results {
		if r.applicable {
			checks = append(checks, r.checks...)
		}
	}
	return finish(Verdict{
		MatchedRule:        RuleNone,
		FailedPrecondition: PreconditionNone,
		Checks:             checks,
	})
}

// ruleResult is the outcome of one rule. A rule is applicable when the
// product is routed to it; it matches when it is applicable and every check
// passes.
type ruleResult struct {
	rule       MatchedRule
	applicable bool
	checks     []Check
}

func (r ruleResult) matched() bool {
	if !r.applicable {
		return false
	}
	for _, c := range r.checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// rejectNotDeceased is the precondition A verdict. It depends on the vital
// status alone, so the orchestration can produce it before the remaining
// facts are gathered.
func rejectNotDeceased(status VitalStatus) Verdict {
	return finish(Verdict{
		MatchedRule:        RuleNone,
		FailedPrecondition: PreconditionNotDeceased,
		Checks: []Check{{
			Rule:       RuleNone,
			Criterion:  CriterionVitalStatus,
			Comparison: CompareEqual,
			Limit:      string(VitalStatusDeceased),
			Actual:     string(status),
		}},
	})
}

// validityWindowCheck returns the first failing window check, or a passing
// check when disbursement date <= date of death <= credit term end.
func validityWindowCheck(facts PersonFacts) Check {
	death, hasDeath := facts.DateOfDeath()
	if !hasDeath {
		return Check{Rule: RuleNone, Criterion: CriterionDateOfDeath, Comparison: ComparePresent}
	}
	termEnd, hasTermEnd := facts.CreditTermEnd()
	if !hasTermEnd {
		return Check{Rule: RuleNone, Criterion: CriterionCreditTermEnd, Comparison: ComparePresent}
	}
	if death.Before(facts.disbursementDate) {
		return Check{
			Rule:       RuleNone,
			Criterion:  CriterionDeathAfterDisbursement,
			Comparison: CompareAtLeast,
			Limit:      facts.disbursementDate.String(),
			Actual:     death.String(),
		}
	}
	if death.After(termEnd) {
		return Check{
			Rule:       RuleNone,
			Criterion:  CriterionDeathBeforeTermEnd,
			Comparison: CompareAtMost,
			Limit:      termEnd.String(),
			Actual:     death.String(),
		}
	}
	return Check{
		Rule:       RuleNone,
		Criterion:  CriterionDeathBeforeTermEnd,
		Comparison: CompareAtMost,
		Limit:      termEnd.String(),
		Actual:     death.String(),
		Passed:     true,
	}
}

// evaluateCardRule: CREDIT_CARD and balance <= 200,000,000.
func evaluateCardRule(facts PersonFacts) ruleResult {
	return ruleResult{
		rule:       RuleOne,
		applicable: facts.productType == ProductCreditCard,
		checks: []Check{{
			Rule:       RuleOne,
			Criterion:  CriterionCardBalance,
			Comparison: CompareAtMost,
			Limit:      cardBalanceCeiling.String(),
			Actual:     facts.balance.String(),
			Passed:     facts.balance.LessThanOrEqual(cardBalanceCeiling),
		}},
	}
}

// evaluateMobileCreditRule: CREDIT on a mobile plan, more than 60 days since
// disbursement and a disbursement below 50,000,000.
func evaluateMobileCreditRule(facts PersonFacts, gap int) ruleResult {
	return ruleResult{
		rule:       RuleTwo,
		applicable: facts.productType == ProductCredit,
		checks: []Check{
			{
				Rule:       RuleTwo,
				Criterion:  CriterionCreditPlan,
				Comparison: CompareMember,
				Limit:      "MOBILE_*",
				Actual:     string(facts.creditPlan),
				Passed:     facts.creditPlan.IsMobile(),
			},
			daysCheck(RuleTwo, gap, creditMinDaysSinceDisbursement),
			{
				Rule:       RuleTwo,
				Criterion:  CriterionDisbursementAmount,
				Comparison: CompareLessThan,
				Limit:      creditDisbursementLimit.String(),
				Actual:     facts.disbursementAmount.String(),
				Passed:     facts.disbursementAmount.LessThan(creditDisbursementLimit),
			},
		},
	}
}

// evaluateGeneralRule covers every product that is neither a credit card nor
// a credit on a mobile plan: more than 730 days since disbursement and a
// balance below 50,000,000.
func evaluateGeneralRule(facts PersonFacts, gap int) ruleResult {
	qualifyingCredit := facts.productType == ProductCredit && facts.creditPlan.IsMobile()
	return ruleResult{
		rule:       RuleThree,
		applicable: facts.productType != ProductCreditCard && !qualifyingCredit,
		checks: []Check{
			daysCheck(RuleThree, gap, generalMinDaysSinceDisbursement),
			{
				Rule:       RuleThree,
				Criterion:  CriterionBalance,
				Comparison: CompareLessThan,
				Limit:      generalBalanceLimit.String(),
				Actual:     facts.balance.String(),
				Passed:     facts.balance.LessThan(generalBalanceLimit),
			},
		},
	}
}

// daysCheck compares the strict day gap. Exactly minDays does not pass.
func daysCheck(rule MatchedRule, gap, minDays int) Check {
	return Check{
		Rule:       rule,
		Criterion:  CriterionDaysSinceDisbursement,
		Comparison: CompareGreaterThan,
		Limit:      strconv.Itoa(minDays),
		Actual:     strconv.Itoa(gap),
		Passed:     gap > minDays,
	}
}

func finish(v Verdict) Verdict {
	v.Reason = justify(v, LanguageEnglish)
	return v
}
