package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"polizaexpress/internal/cases"
	"polizaexpress/internal/decision"
	dhandler "polizaexpress/internal/decision/handler"
	"polizaexpress/internal/platform/metrics"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/platform/httputil"
	"polizaexpress/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

// Service defines the interface for case operations.
type Service interface {
	Create(ctx context.Context, identityDocument, deathCertificate cases.Document) (*cases.Case, error)
	Evaluate(ctx context.Context, caseID id.CaseID) (*cases.Case, *decision.Evaluation, error)
	Get(ctx context.Context, caseID id.CaseID) (*cases.Case, error)
	Delete(ctx context.Context, caseID id.CaseID) error
	List(ctx context.Context) ([]*cases.Case, error)
}

// multipartOverhead covers form boundaries and headers on top of the two files.
const multipartOverhead = 1 << 20

// Handler wires case endpoints to the case service.
type Handler struct {
	service        Service
	logger         *slog.Logger
	metrics        *metrics.Metrics
	maxUploadBytes int64
}

// New constructs a case handler. maxUploadBytes is the per-document limit.
func New(service Service, logger *slog.Logger, m *metrics.Metrics, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/cases", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/{case_id}", h.HandleGet)
		r.Delete("/{case_id}", h.HandleDelete)
		r.Post("/{case_id}/evaluate", h.HandleEvaluate)
	})
}

// HandleCreate handles POST /cases: a multipart upload of the identity
// document (cedula) and the death certificate (defuncion).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = dErrors.Wrap(err, dErrors.CodePayloadTooLarge, "upload exceeds the size limit")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "multipart form body is required")
		}
		h.logger.WarnContext(ctx, "case upload rejected", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	identityDocument, err := h.readDocument(r, cases.FieldIdentityDocument)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deathCertificate, err := h.readDocument(r, cases.FieldDeathCertificate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.Create(ctx, identityDocument, deathCertificate)
	if err != nil {
		h.logger.WarnContext(ctx, "case creation failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromCase(c, dhandler.LanguageFor(r)))
}

// readDocument reads one file part, at most one byte past the limit so the
// service can reject oversized files.
func (h *Handler) readDocument(r *http.Request, field string) (cases.Document, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return cases.Document{}, dErrors.New(dErrors.CodeValidation, field+" is required")
		}
		return cases.Document{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+field+" upload")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return cases.Document{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read "+field)
	}
	h.metrics.ObserveUpload(int64(len(content)))
	return cases.Document{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Content:     content,
	}, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// HandleEvaluate handles POST /cases/{case_id}/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "case_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, eval, err := h.service.Evaluate(ctx, caseID)
	if err != nil {
		h.logger.WarnContext(ctx, "case evaluation failed",
			"request_id", requestID,
			"case_id", caseID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "case evaluated",
		"request_id", requestID,
		"case_id", caseID,
		"eligible", eval.Verdict.Eligible,
		"matched_rule", eval.Verdict.MatchedRule,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(c, eval, dhandler.LanguageFor(r)))
}

// HandleGet handles GET /cases/{case_id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "case_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCase(c, dhandler.LanguageFor(r)))
}

// HandleDelete handles DELETE /cases/{case_id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "case_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), caseID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /cases.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCases(all, dhandler.LanguageFor(r)))
}
