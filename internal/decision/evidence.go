package decision

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"polizaexpress/internal/decision/ports"
	"polizaexpress/internal/evidence/providers"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/platform/audit"
)

// Step is a position in the mandatory fact gathering sequence.
type Step int

const (
	StepIdentityNumber Step = iota + 1
	StepVitalStatus
	StepDateOfDeath
	StepFinancialFacts
)

func (s Step) String() string {
	switch s {
	case StepIdentityNumber:
		return "identity_number"
	case StepVitalStatus:
		return "vital_status"
	case StepDateOfDeath:
		return "date_of_death"
	case StepFinancialFacts:
		return "financial_facts"
	}
	return "step_" + strconv.Itoa(int(s))
}

// Source names the collaborator behind a step.
func (s Step) Source() string {
	switch s {
	case StepIdentityNumber, StepDateOfDeath:
		return "vision"
	case StepVitalStatus:
		return "registry"
	case StepFinancialFacts:
		return "financial_store"
	}
	return "unknown"
}

func (s Step) auditAction() audit.AuditEvent {
	switch s {
	case StepIdentityNumber:
		return audit.EventIdentityExtracted
	case StepVitalStatus:
		return audit.EventVitalStatusChecked
	case StepDateOfDeath:
		return audit.EventDeathDateExtracted
	default:
		return audit.EventFinancialsRetrieved
	}
}

// StepRecord describes one gathered (or skipped) step.
type StepRecord struct {
	Step     Step
	Source   string
	Duration time.Duration
	Skipped  bool
}

// gatheredFacts is the raw material of a case before normalization.
type gatheredFacts struct {
	raw      RawFacts
	identity id.IdentityNumber
	steps    []StepRecord
	// stoppedAt holds the vital status when the sequence stopped after step 2.
	stoppedAt *VitalStatus
}

// gatherFacts runs the four steps in the mandatory order and emits one audit
// event per completed step, in that order.
func (s *Service) gatherFacts(ctx context.Context, req CaseRequest) (*gatheredFacts, error) {
	ctx, cancel := context.WithTimeout(ctx, s.evidenceTimeout)
	defer cancel()

	g := &gatheredFacts{}

	// Step 1: identity number
	rawIdentity, rec, err := runStep(ctx, s, StepIdentityNumber, func(ctx context.Context) (string, error) {
		return s.documents.ExtractIdentityNumber(ctx, req.IdentityDocument)
	})
	if err != nil {
		return nil, err
	}
	identity, err := id.ParseIdentityNumber(rawIdentity)
	if err != nil {
		s.metrics.IncrementInvalidFact(string(FieldIdentityNumber))
		invalid := newInvalidFact(FieldIdentityNumber, rawIdentity, "identity number must be 1-15 digits")
		return nil, dErrors.Wrap(invalid, dErrors.CodeValidation, invalid.Error())
	}
	g.identity = identity
	g.raw.IdentityNumber = identity.String()
	g.steps = append(g.steps, rec)
	if err := s.emitStep(ctx, req.CaseID, identity, rec, "extracted"); err != nil {
		return nil, err
	}

	// Step 2: vital status
	vital, rec, err := runStep(ctx, s, StepVitalStatus, func(ctx context.Context) (*ports.VitalRecord, error) {
		return s.registry.LookupVitalStatus(ctx, identity)
	})
	if err != nil {
		return nil, err
	}
	if vital == nil {
		return nil, translateStepError(StepVitalStatus, providers.NewProviderError(providers.ErrorBadData, StepVitalStatus.Source(), "empty registry answer", nil))
	}
	if vital.Source != "" {
		rec.Source = vital.Source
	}
	status := ParseVitalStatus(vital.Status)
	g.raw.VitalStatus = vital.Status
	g.steps = append(g.steps, rec)
	if err := s.emitStep(ctx, req.CaseID, identity, rec, string(status)); err != nil {
		return nil, err
	}

	if status != VitalStatusDeceased {
		g.stoppedAt = &status
		g.steps = append(g.steps,
			StepRecord{Step: StepDateOfDeath, Source: StepDateOfDeath.Source(), Skipped: true},
			StepRecord{Step: StepFinancialFacts, Source: StepFinancialFacts.Source(), Skipped: true},
		)
		return g, nil
	}

	// Steps 3 and 4
	var (
		deathDate    string
		financial    *ports.FinancialRecord
		deathRec     StepRecord
		financialRec StepRecord
	)
	extractDeath := func(ctx context.Context) (err error) {
		deathDate, deathRec, err = runStep(ctx, s, StepDateOfDeath, func(ctx context.Context) (string, error) {
			return s.documents.ExtractDateOfDeath(ctx, req.DeathCertificate)
		})
		return err
	}
	lookupFinancial := func(ctx context.Context) (err error) {
		financial, financialRec, err = runStep(ctx, s, StepFinancialFacts, func(ctx context.Context) (*ports.FinancialRecord, error) {
			return s.financial.LookupFinancialFacts(ctx, identity)
		})
		return err
	}

	if s.parallelLookups {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error { return extractDeath(egCtx) })
		eg.Go(func() error { return lookupFinancial(egCtx) })
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		// Audit in canonical order once both have completed.
		g.steps = append(g.steps, deathRec)
		if err := s.emitStep(ctx, req.CaseID, identity, deathRec, "extracted"); err != nil {
			return nil, err
		}
		g.steps = append(g.steps, financialRec)
		if err := s.emitStep(ctx, req.CaseID, identity, financialRec, "retrieved"); err != nil {
			return nil, err
		}
	} else {
		if err := extractDeath(ctx); err != nil {
			return nil, err
		}
		g.steps = append(g.steps, deathRec)
		if err := s.emitStep(ctx, req.CaseID, identity, deathRec, "extracted"); err != nil {
			return nil, err
		}
		if err := lookupFinancial(ctx); err != nil {
			return nil, err
		}
		g.steps = append(g.steps, financialRec)
		if err := s.emitStep(ctx, req.CaseID, identity, financialRec, "retrieved"); err != nil {
			return nil, err
		}
	}

	if financial == nil {
		return nil, translateStepError(StepFinancialFacts, providers.NewProviderError(providers.ErrorNotFound, StepFinancialFacts.Source(), "no financial product", nil))
	}
	g.raw.DateOfDeath = deathDate
	g.raw.ProductType = financial.ProductType
	g.raw.CreditPlan = financial.CreditPlan
	g.raw.Balance = financial.Balance
	g.raw.DisbursementDate = financial.DisbursementDate
	g.raw.DisbursementAmount = financial.DisbursementAmount
	g.raw.CreditTermEnd = financial.CreditTermEnd
	return g, nil
}

// runStep wraps a collaborator call with a span, latency metrics and error
// translation.
func runStep[T any](ctx context.Context, s *Service, step Step, call func(context.Context) (T, error)) (T, StepRecord, error) {
	ctx, span := s.tracer.Start(ctx, "decision.step."+step.String(),
		trace.WithAttributes(attribute.Int("decision.step", int(step))),
	)
	defer span.End()

	start := time.Now()
	result, err := call(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveStepLatency(step.String(), elapsed)

	rec := StepRecord{Step: step, Source: step.Source(), Duration: elapsed}
	if err != nil {
		category := providers.GetCategory(providers.FromTransportError(step.Source(), err))
		s.metrics.IncrementStepFailure(step.String(), string(category))
		recordSpanError(span, err)
		var zero T
		return zero, rec, translateStepError(step, err)
	}
	return result, rec, nil
}

func (s *Service) emitStep(ctx context.Context, caseID id.CaseID, identity id.IdentityNumber, rec StepRecord, decision string) error {
	return s.emit(ctx, audit.Event{
		CaseID:        caseID,
		Action:        string(rec.Step.auditAction()),
		Step:          int(rec.Step),
		Decision:      decision,
		Source:        rec.Source,
		SubjectIDHash: identity.Hash(),
	})
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
