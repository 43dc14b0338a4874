package cases

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"polizaexpress/internal/decision"
	"polizaexpress/internal/decision/ports"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/requestcontext"
)

// Defaults applied when no option overrides them.
const (
	DefaultTTL            = 24 * time.Hour
	DefaultMaxUploadBytes = 10 << 20
)

var pdfMagic = []byte("%PDF")

// Store persists cases.
type Store interface {
	Save(ctx context.Context, c *Case) error
	// Update replaces a stored case and returns sentinel.ErrNotFound when it
	// was deleted meanwhile.
	Update(ctx context.Context, c *Case) error
	FindByID(ctx context.Context, caseID id.CaseID) (*Case, error)
	Delete(ctx context.Context, caseID id.CaseID) error
	List(ctx context.Context) ([]*Case, error)
	RemoveExpiredAt(ctx context.Context, now time.Time) ([]id.CaseID, error)
}

// Evaluator runs the eligibility evaluation of a case.
type Evaluator interface {
	EvaluateCase(ctx context.Context, req decision.CaseRequest) (*decision.Evaluation, error)
}

// Auditor receives case lifecycle events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages case intake, evaluation and expiry.
type Service struct {
	store          Store
	evaluator      Evaluator
	auditor        Auditor
	logger         *slog.Logger
	ttl            time.Duration
	maxUploadBytes int64
}

// Option configures the Service.
type Option func(*Service)

func WithAuditor(auditor Auditor) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTTL sets how long a case is kept after upload.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxUploadBytes bounds the size of each uploaded document.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func NewService(store Store, evaluator Evaluator, opts ...Option) *Service {
	s := &Service{
		store:          store,
		evaluator:      evaluator,
		logger:         slog.Default(),
		ttl:            DefaultTTL,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes is the per-document size limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// Create validates both documents and opens a case.
func (s *Service) Create(ctx context.Context, identityDocument, deathCertificate Document) (*Case, error) {
	if err := s.validateDocument(FieldIdentityDocument, identityDocument); err != nil {
		return nil, err
	}
	if err := s.validateDocument(FieldDeathCertificate, deathCertificate); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	c := &Case{
		ID:               id.NewCaseID(),
		Status:           StatusUploaded,
		IdentityDocument: identityDocument,
		DeathCertificate: deathCertificate,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
	}

	s.logger.InfoContext(ctx, "case created",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", c.ID,
		"client_ip", requestcontext.ClientIP(ctx),
		"identity_document_bytes", identityDocument.Size(),
		"death_certificate_bytes", deathCertificate.Size(),
	)
	s.emit(ctx, audit.Event{CaseID: c.ID, Action: string(audit.EventCaseCreated)})
	return c, nil
}

// validateDocument requires a non-empty PDF within the size limit. A file is
// a PDF when its name ends in .pdf or its content starts with %PDF.
func (s *Service) validateDocument(field string, doc Document) error {
	if len(doc.Content) == 0 {
		return dErrors.New(dErrors.CodeValidation, field+" is empty")
	}
	if doc.Size() > s.maxUploadBytes {
		return dErrors.New(dErrors.CodePayloadTooLarge, field+" exceeds the upload size limit")
	}
	if !strings.EqualFold(filepath.Ext(doc.Filename), ".pdf") && !bytes.HasPrefix(doc.Content, pdfMagic) {
		return dErrors.New(dErrors.CodeValidation, field+" must be a PDF document")
	}
	return nil
}

// Evaluate runs the eligibility evaluation on the stored documents. The
// outcome, success or failure, is recorded on the case.
func (s *Service) Evaluate(ctx context.Context, caseID id.CaseID) (*Case, *decision.Evaluation, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}

	eval, err := s.evaluator.EvaluateCase(ctx, decision.CaseRequest{
		CaseID:           c.ID,
		IdentityDocument: toPortDocument(c.IdentityDocument),
		DeathCertificate: toPortDocument(c.DeathCertificate),
	})
	if err != nil {
		c.Status = StatusFailed
		c.FailureReason = failureReason(err)
		if saveErr := s.store.Update(ctx, c); saveErr != nil && !errors.Is(saveErr, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to record case failure",
				"request_id", requestcontext.RequestID(ctx),
				"case_id", c.ID,
				"error", saveErr,
			)
		}
		return nil, nil, err
	}

	c.Status = StatusEvaluated
	c.FailureReason = ""
	c.Verdict = &eval.Verdict
	c.EvaluatedAt = &eval.EvaluatedAt
	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "case was deleted during evaluation")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
	}
	return c, eval, nil
}

// Get returns a live case. Expired cases not yet swept are reported as not
// found.
func (s *Service) Get(ctx context.Context, caseID id.CaseID) (*Case, error) {
	c, err := s.store.FindByID(ctx, caseID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if c.IsExpiredAt(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, caseID id.CaseID) error {
	if err := s.store.Delete(ctx, caseID); err != nil {
		return translateStoreError(err)
	}
	s.logger.InfoContext(ctx, "case deleted",
		"request_id", requestcontext.RequestID(ctx),
		"case_id", caseID,
	)
	s.emit(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventCaseDeleted)})
	return nil
}

// List returns the live cases, oldest first.
func (s *Service) List(ctx context.Context) ([]*Case, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	now := requestcontext.Now(ctx)
	live := make([]*Case, 0, len(all))
	for _, c := range all {
		if !c.IsExpiredAt(now) {
			live = append(live, c)
		}
	}
	return live, nil
}

// RemoveExpiredAt deletes the cases expired as of now.
// Exported for testability; background cleanup passes wall-clock time.
func (s *Service) RemoveExpiredAt(ctx context.Context, now time.Time) (int, error) {
	removed, err := s.store.RemoveExpiredAt(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, caseID := range removed {
		s.emit(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventCaseExpired), Timestamp: now})
	}
	if len(removed) > 0 {
		s.logger.InfoContext(ctx, "expired cases removed", "count", len(removed))
	}
	return len(removed), nil
}

// StartCleanup runs periodic cleanup of expired cases until ctx is cancelled.
func (s *Service) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RemoveExpiredAt(ctx, time.Now()); err != nil {
				s.logger.ErrorContext(ctx, "case cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// emit records an operations event. Lifecycle events are not part of the
// compliance trail; failures are logged only.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "case audit event dropped",
			"action", event.Action,
			"case_id", event.CaseID,
			"error", err,
		)
	}
}

func toPortDocument(d Document) ports.Document {
	return ports.Document{
		Name:        d.Filename,
		ContentType: d.ContentType,
		Content:     d.Content,
	}
}

func failureReason(err error) string {
	if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal {
		return de.Message
	}
	return "evaluation failed"
}

func translateStoreError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "case not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "case store failure")
}
