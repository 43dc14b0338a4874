package cases_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"polizaexpress/internal/cases"
	"polizaexpress/internal/cases/store"
	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/requestcontext"
)

// =============================================================================
// Case Service Test Suite
// =============================================================================
// Justification for unit tests: expiry is driven by the request clock and the
// sweep emits lifecycle events that the HTTP surface never shows.

type fakeEvaluator struct {
	requests []decision.CaseRequest
	eval     *decision.Evaluation
	err      error
	// during runs inside EvaluateCase, before it returns.
	during func(ctx context.Context, req decision.CaseRequest)
}

func (f *fakeEvaluator) EvaluateCase(ctx context.Context, req decision.CaseRequest) (*decision.Evaluation, error) {
	f.requests = append(f.requests, req)
	if f.during != nil {
		f.during(ctx, req)
	}
	if f.err != nil {
		return nil, f.err
	}
	eval := *f.eval
	eval.CaseID = req.CaseID
	return &eval, nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (a *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	store     *store.InMemoryStore
	evaluator *fakeEvaluator
	auditor   *recordingAuditor
	service   *cases.Service
	now       time.Time
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.evaluator = &fakeEvaluator{eval: &decision.Evaluation{
		Verdict: decision.Verdict{Eligible: true, MatchedRule: decision.RuleOne, FailedPrecondition: decision.PreconditionNone},
	}}
	s.auditor = &recordingAuditor{}
	s.service = cases.NewService(s.store, s.evaluator,
		cases.WithAuditor(s.auditor),
		cases.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		cases.WithTTL(time.Hour),
		cases.WithMaxUploadBytes(1024),
	)
	s.now = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = s.at(s.now)
	s.evaluator.eval.EvaluatedAt = s.now
}

func (s *ServiceSuite) at(now time.Time) context.Context {
	return requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-1"), now)
}

func pdf(name string) cases.Document {
	return cases.Document{Filename: name, ContentType: "application/pdf", Content: []byte("%PDF-1.7\n...")}
}

func (s *ServiceSuite) create() *cases.Case {
	c, err := s.service.Create(s.ctx, pdf("cedula.pdf"), pdf("defuncion.pdf"))
	s.Require().NoError(err)
	return c
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *ServiceSuite) TestCreate() {
	s.Run("opens an uploaded case", func() {
		c := s.create()
		s.Equal(cases.StatusUploaded, c.Status)
		s.Equal(s.now, c.CreatedAt)
		s.Equal(s.now.Add(time.Hour), c.ExpiresAt)

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.ID, stored.ID)
		s.Equal([]string{string(audit.EventCaseCreated)}, s.auditor.actions())
		s.Equal("req-1", s.auditor.events[0].RequestID)
	})

	s.Run("accepts a pdf by content when the name has no extension", func() {
		doc := pdf("scan")
		_, err := s.service.Create(s.ctx, doc, pdf("defuncion.pdf"))
		s.NoError(err)
	})

	s.Run("accepts a pdf by extension", func() {
		doc := cases.Document{Filename: "CEDULA.PDF", Content: []byte("binary")}
		_, err := s.service.Create(s.ctx, doc, pdf("defuncion.pdf"))
		s.NoError(err)
	})

	rejected := []struct {
		name string
		doc  cases.Document
		code dErrors.Code
		msg  string
	}{
		{"empty", cases.Document{Filename: "cedula.pdf"}, dErrors.CodeValidation, "cedula is empty"},
		{"not a pdf", cases.Document{Filename: "cedula.png", Content: []byte{0x89, 'P', 'N', 'G'}}, dErrors.CodeValidation, "cedula must be a PDF document"},
		{"too large", cases.Document{Filename: "cedula.pdf", Content: make([]byte, 1025)}, dErrors.CodePayloadTooLarge, "cedula exceeds the upload size limit"},
	}
	for _, tt := range rejected {
		s.Run(tt.name, func() {
			_, err := s.service.Create(s.ctx, tt.doc, pdf("defuncion.pdf"))
			de, ok := dErrors.As(err)
			s.Require().True(ok)
			s.Equal(tt.code, de.Code)
			s.Equal(tt.msg, de.Message)
		})
	}

	s.Run("death certificate is validated too", func() {
		_, err := s.service.Create(s.ctx, pdf("cedula.pdf"), cases.Document{Filename: "acta.pdf"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("audit failure does not fail the upload", func() {
		s.auditor.err = errors.New("broker down")
		defer func() { s.auditor.err = nil }()
		_, err := s.service.Create(s.ctx, pdf("cedula.pdf"), pdf("defuncion.pdf"))
		s.NoError(err)
	})
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func (s *ServiceSuite) TestEvaluate() {
	s.Run("records the verdict", func() {
		c := s.create()

		updated, eval, err := s.service.Evaluate(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(cases.StatusEvaluated, updated.Status)
		s.Require().NotNil(updated.Verdict)
		s.Equal(decision.RuleOne, updated.Verdict.MatchedRule)
		s.Equal(c.ID, eval.CaseID)

		req := s.evaluator.requests[len(s.evaluator.requests)-1]
		s.Equal(c.ID, req.CaseID)
		s.Equal("cedula.pdf", req.IdentityDocument.Name)
		s.Equal("defuncion.pdf", req.DeathCertificate.Name)

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(cases.StatusEvaluated, stored.Status)
		s.Require().NotNil(stored.EvaluatedAt)
		s.Equal(s.now, *stored.EvaluatedAt)
	})

	s.Run("records the failure", func() {
		c := s.create()
		s.evaluator.err = dErrors.New(dErrors.CodeUnavailable, "vital status lookup unavailable")
		defer func() { s.evaluator.err = nil }()

		_, _, err := s.service.Evaluate(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(cases.StatusFailed, stored.Status)
		s.Equal("vital status lookup unavailable", stored.FailureReason)
	})

	s.Run("internal failures are not exposed on the case", func() {
		c := s.create()
		s.evaluator.err = dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to save verdict")
		defer func() { s.evaluator.err = nil }()

		_, _, err := s.service.Evaluate(s.ctx, c.ID)
		s.Require().Error(err)

		stored, err := s.service.Get(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("evaluation failed", stored.FailureReason)
	})

	s.Run("case deleted while evaluating stays deleted", func() {
		c := s.create()
		s.evaluator.during = func(ctx context.Context, req decision.CaseRequest) {
			s.Require().NoError(s.service.Delete(ctx, req.CaseID))
		}
		defer func() { s.evaluator.during = nil }()

		_, _, err := s.service.Evaluate(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Get(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("failed evaluation of a deleted case stays deleted", func() {
		c := s.create()
		s.evaluator.err = dErrors.New(dErrors.CodeUnavailable, "vital status lookup unavailable")
		s.evaluator.during = func(ctx context.Context, req decision.CaseRequest) {
			s.Require().NoError(s.service.Delete(ctx, req.CaseID))
		}
		defer func() {
			s.evaluator.err = nil
			s.evaluator.during = nil
		}()

		_, _, err := s.service.Evaluate(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

		_, err = s.service.Get(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown case", func() {
		_, _, err := s.service.Evaluate(s.ctx, id.NewCaseID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Expiry / Delete Tests
// =============================================================================

func (s *ServiceSuite) TestExpiry() {
	c := s.create()
	later := s.at(s.now.Add(time.Hour))

	s.Run("expired cases are not found before the sweep", func() {
		_, err := s.service.Get(later, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		live, err := s.service.List(later)
		s.Require().NoError(err)
		s.Empty(live)

		_, _, err = s.service.Evaluate(later, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("sweep removes and audits", func() {
		removed, err := s.service.RemoveExpiredAt(s.ctx, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(1, removed)
		s.Equal([]string{string(audit.EventCaseCreated), string(audit.EventCaseExpired)}, s.auditor.actions())
		s.Equal(c.ID, s.auditor.events[1].CaseID)

		removed, err = s.service.RemoveExpiredAt(s.ctx, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Zero(removed)
	})
}

func (s *ServiceSuite) TestStartCleanupStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() {
		done <- s.service.StartCleanup(ctx, 10*time.Millisecond)
	}()
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("cleanup did not stop")
	}
}

func (s *ServiceSuite) TestDelete() {
	c := s.create()

	s.Require().NoError(s.service.Delete(s.ctx, c.ID))
	_, err := s.service.Get(s.ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Equal([]string{string(audit.EventCaseCreated), string(audit.EventCaseDeleted)}, s.auditor.actions())

	err = s.service.Delete(s.ctx, c.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListIsOldestFirst() {
	first := s.create()
	s.ctx = s.at(s.now.Add(time.Minute))
	second := s.create()

	all, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(first.ID, all[0].ID)
	s.Equal(second.ID, all[1].ID)
}
