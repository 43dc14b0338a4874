package decision

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Language selects the rendering of Format.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

var languageMatcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// ParseLanguage resolves a language tag or Accept-Language value. Anything
// that does not match Spanish renders in English.
func ParseLanguage(raw string) Language {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return LanguageEnglish
	}
	tag, _, _ := languageMatcher.Match(tags...)
	if base, _ := tag.Base(); base.String() == "es" {
		return LanguageSpanish
	}
	return LanguageEnglish
}

// Format renders a verdict as a leading eligibility statement followed by
// the justification sentence. Both languages are rendered from the same
// structured fields, so they always agree.
func Format(v Verdict, lang Language) string {
	return headline(v, lang) + "\n" + justify(v, lang)
}

func headline(v Verdict, lang Language) string {
	if lang == LanguageSpanish {
		if v.Eligible {
			return "Aplica: Sí"
		}
		return "Aplica: No"
	}
	if v.Eligible {
		return "Eligible: Yes"
	}
	return "Eligible: No"
}

// justify builds the one-sentence justification.
func justify(v Verdict, lang Language) string {
	p := newPhrasebook(lang)

	switch {
	case v.FailedPrecondition == PreconditionNotDeceased, v.FailedPrecondition == PreconditionOutsideValidity:
		return p.sentence(p.preconditionLead(v.FailedPrecondition), p.describeAll(v.Missed(), false))
	case v.Eligible:
		return p.sentence(p.matchedLead(v.MatchedRule), p.describeAll(v.Checks, false))
	default:
		missed := v.Missed()
		if len(missed) == 0 {
			return p.sentence(p.noRuleLead(), p.noThresholds())
		}
		return p.sentence(p.noRuleLead(), p.describeAll(missed, true))
	}
}

// phrasebook renders the pieces of a justification in one language.
type phrasebook struct {
	lang    Language
	printer *message.Printer
}

func newPhrasebook(lang Language) phrasebook {
	if lang == LanguageSpanish {
		return phrasebook{lang: lang, printer: message.NewPrinter(language.Spanish)}
	}
	return phrasebook{lang: LanguageEnglish, printer: message.NewPrinter(language.English)}
}

func (p phrasebook) es() bool { return p.lang == LanguageSpanish }

func (p phrasebook) sentence(lead, body string) string {
	return lead + ": " + body + "."
}

func (p phrasebook) matchedLead(rule MatchedRule) string {
	if p.es() {
		return "Aplica la " + p.ruleName(rule)
	}
	return capitalize(p.ruleName(rule)) + " applies"
}

func (p phrasebook) noRuleLead() string {
	if p.es() {
		return "Ninguna regla aplica"
	}
	return "No rule applies"
}

func (p phrasebook) noThresholds() string {
	if p.es() {
		return "el producto no corresponde a ninguna regla"
	}
	return "the product is not covered by any rule"
}

func (p phrasebook) preconditionLead(fp FailedPrecondition) string {
	switch {
	case fp == PreconditionNotDeceased && p.es():
		return "Precondición no cumplida (no fallecido)"
	case fp == PreconditionNotDeceased:
		return "Precondition failed (not deceased)"
	case p.es():
		return "Precondición no cumplida (fuera de vigencia)"
	default:
		return "Precondition failed (outside validity window)"
	}
}

func (p phrasebook) ruleName(rule MatchedRule) string {
	n := strings.TrimPrefix(string(rule), "RULE_")
	if p.es() {
		return "regla " + n
	}
	return "rule " + n
}

// describeAll joins check descriptions. With prefixRule the first
// description of each rule is labelled with it.
func (p phrasebook) describeAll(checks []Check, prefixRule bool) string {
	parts := make([]string, 0, len(checks))
	var last MatchedRule
	for _, c := range checks {
		d := p.describe(c)
		if prefixRule && c.Rule != RuleNone && c.Rule != last {
			d = p.ruleName(c.Rule) + ", " + d
		}
		last = c.Rule
		parts = append(parts, d)
	}
	sep := "; "
	if !prefixRule {
		if p.es() {
			sep = " y "
		} else {
			sep = " and "
		}
	}
	return strings.Join(parts, sep)
}

func (p phrasebook) describe(c Check) string {
	switch c.Criterion {
	case CriterionVitalStatus:
		if p.es() {
			return fmt.Sprintf("el estado vital registrado es %s, no %s", c.Actual, c.Limit)
		}
		return fmt.Sprintf("the recorded vital status is %s, not %s", c.Actual, c.Limit)
	case CriterionDateOfDeath:
		if p.es() {
			return "falta la fecha de defunción"
		}
		return "the date of death is missing"
	case CriterionCreditTermEnd:
		if p.es() {
			return "falta la fecha de fin de vigencia del crédito"
		}
		return "the credit term end date is missing"
	case CriterionDeathAfterDisbursement:
		if p.es() {
			return fmt.Sprintf("la fecha de defunción %s es anterior al desembolso del %s", p.date(c.Actual), p.date(c.Limit))
		}
		return fmt.Sprintf("the date of death %s is before the disbursement date %s", p.date(c.Actual), p.date(c.Limit))
	case CriterionDeathBeforeTermEnd:
		switch {
		case c.Passed && p.es():
			return fmt.Sprintf("la fecha de defunción %s está dentro de la vigencia que termina el %s", p.date(c.Actual), p.date(c.Limit))
		case c.Passed:
			return fmt.Sprintf("the date of death %s is within the term ending %s", p.date(c.Actual), p.date(c.Limit))
		case p.es():
			return fmt.Sprintf("la fecha de defunción %s es posterior al fin de vigencia del %s", p.date(c.Actual), p.date(c.Limit))
		default:
			return fmt.Sprintf("the date of death %s is after the credit term end %s", p.date(c.Actual), p.date(c.Limit))
		}
	case CriterionCardBalance:
		switch {
		case c.Passed && p.es():
			return fmt.Sprintf("el saldo de la tarjeta %s no supera el tope de %s", p.money(c.Actual), p.money(c.Limit))
		case c.Passed:
			return fmt.Sprintf("the card balance %s is within the %s ceiling", p.money(c.Actual), p.money(c.Limit))
		case p.es():
			return fmt.Sprintf("el saldo de la tarjeta %s supera el tope de %s", p.money(c.Actual), p.money(c.Limit))
		default:
			return fmt.Sprintf("the card balance %s exceeds the %s ceiling", p.money(c.Actual), p.money(c.Limit))
		}
	case CriterionCreditPlan:
		switch {
		case c.Passed && p.es():
			return fmt.Sprintf("el plan %s es un plan móvil", c.Actual)
		case c.Passed:
			return fmt.Sprintf("the %s plan is a mobile plan", c.Actual)
		case p.es():
			return fmt.Sprintf("el plan %s no es un plan móvil", c.Actual)
		default:
			return fmt.Sprintf("the %s plan is not a mobile plan", c.Actual)
		}
	case CriterionDaysSinceDisbursement:
		days, limit := atoi(c.Actual), atoi(c.Limit)
		switch {
		case c.Passed && p.es():
			return p.printer.Sprintf("han pasado %d días desde el desembolso, más de %d", days, limit)
		case c.Passed:
			return p.printer.Sprintf("%d days since disbursement exceed the %d-day minimum", days, limit)
		case p.es():
			return p.printer.Sprintf("han pasado %d días desde el desembolso, no más de %d", days, limit)
		default:
			return p.printer.Sprintf("%d days since disbursement do not exceed the %d-day minimum", days, limit)
		}
	case CriterionDisbursementAmount:
		switch {
		case c.Passed && p.es():
			return fmt.Sprintf("el monto desembolsado %s es menor a %s", p.money(c.Actual), p.money(c.Limit))
		case c.Passed:
			return fmt.Sprintf("the disbursed amount %s is below %s", p.money(c.Actual), p.money(c.Limit))
		case p.es():
			return fmt.Sprintf("el monto desembolsado %s no es menor a %s", p.money(c.Actual), p.money(c.Limit))
		default:
			return fmt.Sprintf("the disbursed amount %s is not below %s", p.money(c.Actual), p.money(c.Limit))
		}
	case CriterionBalance:
		switch {
		case c.Passed && p.es():
			return fmt.Sprintf("el saldo %s es menor a %s", p.money(c.Actual), p.money(c.Limit))
		case c.Passed:
			return fmt.Sprintf("the balance %s is below %s", p.money(c.Actual), p.money(c.Limit))
		case p.es():
			return fmt.Sprintf("el saldo %s no es menor a %s", p.money(c.Actual), p.money(c.Limit))
		default:
			return fmt.Sprintf("the balance %s is not below %s", p.money(c.Actual), p.money(c.Limit))
		}
	}
	return string(c.Criterion)
}

// money renders a canonical decimal string with locale grouping. Values that
// do not parse are returned as is.
func (p phrasebook) money(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	if d.IsInteger() && d.Abs().LessThan(decimal.NewFromInt(1<<53)) {
		return "$" + p.printer.Sprintf("%d", d.IntPart())
	}
	return "$" + p.printer.Sprintf("%.2f", d.InexactFloat64())
}

// date renders an ISO date as YYYY-MM-DD in English and DD/MM/YYYY in Spanish.
func (p phrasebook) date(raw string) string {
	d, err := civil.ParseDate(raw)
	if err != nil || !p.es() {
		return raw
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
