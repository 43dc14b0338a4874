package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/httputil"
	"polizaexpress/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

// Service defines the interface for decision operations.
type Service interface {
	EvaluateFacts(ctx context.Context, raw decision.RawFacts) (*decision.Evaluation, error)
	FindVerdict(ctx context.Context, caseID id.CaseID) (*decision.VerdictRecord, error)
}

// Handler wires eligibility endpoints to the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a decision handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts eligibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/evaluate", h.HandleEvaluate)
	r.Get("/eligibility/verdicts/{case_id}", h.HandleGetVerdict)
}

// HandleEvaluate handles POST /eligibility/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// Decode and validate request
	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	eval, err := h.service.EvaluateFacts(ctx, req.RawFacts())
	if err != nil {
		h.logger.WarnContext(ctx, "eligibility evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "eligibility evaluated",
		"request_id", requestID,
		"eligible", eval.Verdict.Eligible,
		"matched_rule", eval.Verdict.MatchedRule,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(eval, LanguageFor(r)))
}

// HandleGetVerdict handles GET /eligibility/verdicts/{case_id} requests.
func (h *Handler) HandleGetVerdict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caseID, err := id.ParseCaseID(chi.URLParam(r, "case_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.FindVerdict(ctx, caseID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record, LanguageFor(r)))
}

// LanguageFor picks the rendering language: the lang query parameter wins
// over Accept-Language.
func LanguageFor(r *http.Request) decision.Language {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return decision.ParseLanguage(lang)
	}
	return decision.ParseLanguage(r.Header.Get("Accept-Language"))
}
