package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"polizaexpress/internal/decision"
	"polizaexpress/internal/decision/handler/mocks"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/testutil"
)

// =============================================================================
// Decision Handler Test Suite
// =============================================================================
// Covers request validation, language negotiation and error-to-status mapping.

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger).Register(s.router)
}

func validRequest() EvaluateRequest {
	return EvaluateRequest{
		IdentityNumber:     "1032323323",
		VitalStatus:        "fallecido",
		DateOfDeath:        "12 de enero de 2025",
		ProductType:        "CREDIT_CARD",
		Balance:            "$150.000.000",
		DisbursementDate:   "01/01/2023",
		DisbursementAmount: "$10.000.000",
		CreditTermEnd:      "2030-01-01",
	}
}

func (s *HandlerSuite) evaluation(raw decision.RawFacts) *decision.Evaluation {
	facts, err := decision.Normalize(raw)
	s.Require().NoError(err)
	return &decision.Evaluation{
		Facts:       &facts,
		Verdict:     decision.Evaluate(facts),
		EvaluatedAt: time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestEvaluate() {
	s.Run("eligible card holder", func() {
		req := validRequest()
		req.IdentityNumber = "  1032323323 "
		want := req
		want.IdentityNumber = "1032323323"
		s.service.EXPECT().EvaluateFacts(gomock.Any(), want.RawFacts()).Return(s.evaluation(want.RawFacts()), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[EvaluateResponse](s.T(), rr)
		s.True(resp.Verdict.Eligible)
		s.Equal("RULE_1", resp.Verdict.MatchedRule)
		s.Equal("NONE", resp.Verdict.FailedPrecondition)
		s.Equal("en", resp.Language)
		s.Contains(resp.Verdict.Text, "Eligible: Yes")
		s.NotEmpty(resp.Verdict.Checks)
	})

	s.Run("lang query renders spanish", func() {
		req := validRequest()
		s.service.EXPECT().EvaluateFacts(gomock.Any(), gomock.Any()).Return(s.evaluation(req.RawFacts()), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate?lang=es", req))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[EvaluateResponse](s.T(), rr)
		s.Equal("es", resp.Language)
		s.Contains(resp.Verdict.Text, "Aplica: Sí")
	})

	s.Run("accept-language renders spanish", func() {
		req := validRequest()
		s.service.EXPECT().EvaluateFacts(gomock.Any(), gomock.Any()).Return(s.evaluation(req.RawFacts()), nil)

		httpReq := testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req)
		httpReq.Header.Set("Accept-Language", "es-CO,es;q=0.9")
		rr := testutil.DoRequest(s.router, httpReq)

		resp := testutil.UnmarshalResponse[EvaluateResponse](s.T(), rr)
		s.Equal("es", resp.Language)
	})

	s.Run("missing required field", func() {
		req := validRequest()
		req.Balance = "   "

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("oversized field", func() {
		req := validRequest()
		req.CreditPlan = string(make([]byte, maxFieldLength+1))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("unknown field is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/eligibility/evaluate", `{"identity":"1"}`))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("empty body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/eligibility/evaluate", ""))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unparseable fact is a validation error", func() {
		req := validRequest()
		s.service.EXPECT().EvaluateFacts(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New(`invalid balance "abc"`), dErrors.CodeValidation, `invalid balance "abc": amount is not numeric`))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})

	s.Run("internal errors hide their description", func() {
		req := validRequest()
		s.service.EXPECT().EvaluateFacts(gomock.Any(), gomock.Any()).Return(nil, errors.New("db password=hunter2"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/eligibility/evaluate", req))

		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "hunter2")
	})
}

func (s *HandlerSuite) TestGetVerdict() {
	s.Run("returns the stored verdict", func() {
		caseID := id.NewCaseID()
		req := validRequest()
		eval := s.evaluation(req.RawFacts())
		s.service.EXPECT().FindVerdict(gomock.Any(), caseID).Return(&decision.VerdictRecord{
			CaseID:        caseID,
			SubjectIDHash: "hash",
			Verdict:       eval.Verdict,
			EvaluatedAt:   eval.EvaluatedAt,
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/eligibility/verdicts/"+caseID.String()))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[StoredVerdictResponse](s.T(), rr)
		s.Equal(caseID.String(), resp.CaseID)
		s.True(resp.Verdict.Eligible)
	})

	s.Run("malformed case id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/eligibility/verdicts/not-a-uuid"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("unknown case", func() {
		caseID := id.NewCaseID()
		s.service.EXPECT().FindVerdict(gomock.Any(), caseID).Return(nil, dErrors.New(dErrors.CodeNotFound, "verdict not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/eligibility/verdicts/"+caseID.String()))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}
