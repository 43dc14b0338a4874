package decision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"polizaexpress/internal/decision/metrics"
	"polizaexpress/internal/decision/ports"
	"polizaexpress/internal/evidence/providers"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/requestcontext"
)

const defaultEvidenceTimeout = 30 * time.Second

// Service gathers the facts of a case from the external collaborators in the
// mandatory order, normalizes them and evaluates eligibility. The rules
// themselves live in Evaluate and never see I/O.
type Service struct {
	documents ports.DocumentPort
	registry  ports.RegistryPort
	financial ports.FinancialPort
	auditor   ports.AuditPort
	store     Store
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	parallelLookups bool
	evidenceTimeout time.Duration
}

// Option configures the Service.
type Option func(*Service)

func WithAuditor(auditor ports.AuditPort) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithParallelLookups runs the date-of-death extraction and the financial
// lookup concurrently. Audit events are still emitted in the mandatory order.
func WithParallelLookups() Option {
	return func(s *Service) { s.parallelLookups = true }
}

// WithEvidenceTimeout bounds the whole fact gathering phase.
func WithEvidenceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.evidenceTimeout = d
		}
	}
}

// NewService constructs the decision service.
func NewService(documents ports.DocumentPort, registry ports.RegistryPort, financial ports.FinancialPort, opts ...Option) *Service {
	s := &Service{
		documents:       documents,
		registry:        registry,
		financial:       financial,
		evidenceTimeout: defaultEvidenceTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("polizaexpress/internal/decision")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CaseRequest carries the uploaded documents of a case.
type CaseRequest struct {
	CaseID           id.CaseID
	IdentityDocument ports.Document
	DeathCertificate ports.Document
}

// Evaluation is the outcome of a case. Facts is nil when evaluation stopped
// at the vital-status precondition before the remaining facts were gathered.
type Evaluation struct {
	CaseID      id.CaseID
	Facts       *PersonFacts
	Verdict     Verdict
	Steps       []StepRecord
	EvaluatedAt time.Time
}

// EvaluateCase runs the evaluation sequence for an uploaded case:
//  1. identity number from the identity document
//  2. vital status from the civil registry
//  3. date of death from the death certificate
//  4. financial facts from the data store
//
// Steps 3 and 4 are skipped when the registry does not report the person as
// deceased; the verdict is then the vital-status rejection.
func (s *Service) EvaluateCase(ctx context.Context, req CaseRequest) (*Evaluation, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	ctx, span := s.tracer.Start(ctx, "decision.EvaluateCase")
	defer span.End()

	if req.CaseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "case id is required")
	}
	ctx = requestcontext.WithCaseID(ctx, req.CaseID)

	gathered, err := s.gatherFacts(ctx, req)
	if err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "fact gathering failed",
			"request_id", requestcontext.RequestID(ctx),
			"case_id", req.CaseID,
			"error", err,
		)
		return nil, err
	}

	eval := &Evaluation{
		CaseID:      req.CaseID,
		Steps:       gathered.steps,
		EvaluatedAt: requestcontext.Now(ctx),
	}
	if gathered.stoppedAt != nil {
		eval.Verdict = rejectNotDeceased(*gathered.stoppedAt)
	} else {
		facts, err := s.normalize(ctx, gathered.raw)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		eval.Facts = &facts
		eval.Verdict = Evaluate(facts)
	}

	if err := s.record(ctx, gathered.identity, eval); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return eval, nil
}

// EvaluateFacts normalizes and evaluates facts supplied directly by the
// caller. No collaborator is called; the verdict is not persisted.
func (s *Service) EvaluateFacts(ctx context.Context, raw RawFacts) (*Evaluation, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveEvaluateLatency(time.Since(start))
	}()

	facts, err := s.normalize(ctx, raw)
	if err != nil {
		return nil, err
	}
	verdict := Evaluate(facts)
	s.metrics.IncrementVerdict(verdict.Eligible, string(verdict.MatchedRule), string(verdict.FailedPrecondition))

	s.logger.InfoContext(ctx, "facts evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id_hash", facts.IdentityNumber().Hash(),
		"eligible", verdict.Eligible,
		"matched_rule", verdict.MatchedRule,
		"failed_precondition", verdict.FailedPrecondition,
	)
	return &Evaluation{
		Facts:       &facts,
		Verdict:     verdict,
		EvaluatedAt: requestcontext.Now(ctx),
	}, nil
}

// FindVerdict returns the stored verdict of a case.
func (s *Service) FindVerdict(ctx context.Context, caseID id.CaseID) (*VerdictRecord, error) {
	if s.store == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "verdict not found")
	}
	record, err := s.store.FindByCase(ctx, caseID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return record, nil
}

func (s *Service) normalize(ctx context.Context, raw RawFacts) (PersonFacts, error) {
	facts, err := Normalize(raw)
	if err == nil {
		return facts, nil
	}
	var invalid *InvalidFactError
	if errors.As(err, &invalid) {
		s.metrics.IncrementInvalidFact(string(invalid.Field))
		s.logger.WarnContext(ctx, "invalid fact",
			"request_id", requestcontext.RequestID(ctx),
			"field", invalid.Field,
			"reason", invalid.Reason,
		)
		return PersonFacts{}, dErrors.Wrap(err, dErrors.CodeValidation, invalid.Error())
	}
	return PersonFacts{}, dErrors.Wrap(err, dErrors.CodeInternal, "normalize facts")
}

// record persists the verdict and emits the final audit event. Both are
// fail-closed: a verdict that cannot be audited is not returned.
func (s *Service) record(ctx context.Context, identity id.IdentityNumber, eval *Evaluation) error {
	v := eval.Verdict
	s.metrics.IncrementVerdict(v.Eligible, string(v.MatchedRule), string(v.FailedPrecondition))

	if s.store != nil {
		err := s.store.Save(ctx, VerdictRecord{
			CaseID:        eval.CaseID,
			SubjectIDHash: identity.Hash(),
			Verdict:       v,
			EvaluatedAt:   eval.EvaluatedAt,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "persist verdict")
		}
	}

	decision := "ineligible"
	if v.Eligible {
		decision = "eligible"
	}
	if err := s.emit(ctx, audit.Event{
		CaseID:        eval.CaseID,
		Action:        string(audit.EventEligibilityDecided),
		Step:          len(eval.Steps) + 1,
		Decision:      decision,
		Reason:        v.Reason,
		SubjectIDHash: identity.Hash(),
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "case evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", eval.CaseID,
		"subject_id_hash", identity.Hash(),
		"eligible", v.Eligible,
		"matched_rule", v.MatchedRule,
		"failed_precondition", v.FailedPrecondition,
	)
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit trail unavailable")
	}
	return nil
}

// translateStepError maps a collaborator failure onto a coded domain error.
// Provider categories decide the code; the original error stays wrapped.
func translateStepError(step Step, err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	msg := step.String() + " failed"
	switch providers.GetCategory(providers.FromTransportError(step.Source(), err)) {
	case providers.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": upstream timed out")
	case providers.ErrorNotFound:
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg+": no record for this identity number")
	case providers.ErrorBadData:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg+": upstream returned unreadable data")
	case providers.ErrorInternal:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg+": upstream unavailable")
	}
}

func translateStoreError(err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "verdict not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "load verdict")
}
