package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"polizaexpress/internal/cases"
	"polizaexpress/internal/cases/handler/mocks"
	"polizaexpress/internal/decision"
	id "polizaexpress/pkg/domain"
	dErrors "polizaexpress/pkg/domain-errors"
	"polizaexpress/pkg/testutil"
)

// =============================================================================
// Case Handler Test Suite
// =============================================================================
// Justification for unit tests: multipart parsing, upload limits and the
// per-request language negotiation are HTTP concerns.

const testMaxUpload = 64

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	now     time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, nil, testMaxUpload).Register(s.router)
	s.now = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
}

var (
	cedulaPart    = testutil.UploadFile{Field: cases.FieldIdentityDocument, Filename: "cedula.pdf", Content: []byte("%PDF-1.4 cedula")}
	defuncionPart = testutil.UploadFile{Field: cases.FieldDeathCertificate, Filename: "defuncion.pdf", Content: []byte("%PDF-1.4 acta")}
)

func (s *HandlerSuite) newCase() *cases.Case {
	return &cases.Case{
		ID:               id.NewCaseID(),
		Status:           cases.StatusUploaded,
		IdentityDocument: cases.Document{Filename: "cedula.pdf", ContentType: "application/pdf", Content: cedulaPart.Content},
		DeathCertificate: cases.Document{Filename: "defuncion.pdf", ContentType: "application/pdf", Content: defuncionPart.Content},
		CreatedAt:        s.now,
		ExpiresAt:        s.now.Add(24 * time.Hour),
	}
}

func (s *HandlerSuite) cardVerdict() decision.Verdict {
	facts, err := decision.Normalize(decision.RawFacts{
		IdentityNumber:     "1032323323",
		VitalStatus:        "fallecido",
		DateOfDeath:        "12/01/2025",
		ProductType:        "CREDIT_CARD",
		Balance:            "150.000.000",
		DisbursementDate:   "01/01/2023",
		DisbursementAmount: "0",
		CreditTermEnd:      "2030-01-01",
	})
	s.Require().NoError(err)
	return decision.Evaluate(facts)
}

// =============================================================================
// POST /cases
// =============================================================================

func (s *HandlerSuite) TestCreate() {
	s.Run("accepts both documents", func() {
		c := s.newCase()
		s.service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, identityDocument, deathCertificate cases.Document) (*cases.Case, error) {
				s.Equal("cedula.pdf", identityDocument.Filename)
				s.Equal(cedulaPart.Content, identityDocument.Content)
				s.Equal(defuncionPart.Content, deathCertificate.Content)
				s.Equal("application/octet-stream", deathCertificate.ContentType)
				return c, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewMultipartRequest(s.T(), http.MethodPost, "/cases", cedulaPart, defuncionPart))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[CaseResponse](s.T(), rr)
		s.Equal(c.ID.String(), resp.CaseID)
		s.Equal("uploaded", resp.Status)
		s.Require().Len(resp.Documents, 2)
		s.Equal(cases.FieldIdentityDocument, resp.Documents[0].Field)
		s.Equal(int64(len(cedulaPart.Content)), resp.Documents[0].Size)
		s.Nil(resp.Verdict)
	})

	s.Run("missing death certificate", func() {
		rr := testutil.DoRequest(s.router, testutil.NewMultipartRequest(s.T(), http.MethodPost, "/cases", cedulaPart))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})

	s.Run("body is not multipart", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/cases", map[string]string{"cedula": "x"}))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("oversized file is truncated one byte past the limit", func() {
		big := testutil.UploadFile{Field: cases.FieldIdentityDocument, Filename: "cedula.pdf", Content: bytes.Repeat([]byte("a"), testMaxUpload*4)}
		s.service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, identityDocument, _ cases.Document) (*cases.Case, error) {
				s.Equal(int64(testMaxUpload+1), identityDocument.Size())
				return nil, dErrors.New(dErrors.CodePayloadTooLarge, "cedula exceeds the upload size limit")
			})

		rr := testutil.DoRequest(s.router, testutil.NewMultipartRequest(s.T(), http.MethodPost, "/cases", big, defuncionPart))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusRequestEntityTooLarge, string(dErrors.CodePayloadTooLarge))
	})

	s.Run("service rejects a non-pdf", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "cedula must be a PDF document"))

		rr := testutil.DoRequest(s.router, testutil.NewMultipartRequest(s.T(), http.MethodPost, "/cases", cedulaPart, defuncionPart))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, string(dErrors.CodeValidation))
	})
}

// =============================================================================
// POST /cases/{case_id}/evaluate
// =============================================================================

func (s *HandlerSuite) TestEvaluate() {
	s.Run("returns the verdict with steps", func() {
		c := s.newCase()
		verdict := s.cardVerdict()
		c.Status = cases.StatusEvaluated
		c.Verdict = &verdict
		eval := &decision.Evaluation{
			CaseID:  c.ID,
			Verdict: verdict,
			Steps: []decision.StepRecord{
				{Step: decision.StepIdentityNumber, Source: "vision", Duration: 12 * time.Millisecond},
			},
			EvaluatedAt: s.now,
		}
		c.EvaluatedAt = &eval.EvaluatedAt
		s.service.EXPECT().Evaluate(gomock.Any(), c.ID).Return(c, eval, nil)

		req := testutil.NewRequest(s.T(), http.MethodPost, "/cases/"+c.ID.String()+"/evaluate?lang=es")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[CaseResponse](s.T(), rr)
		s.Equal("evaluated", resp.Status)
		s.Require().NotNil(resp.Verdict)
		s.True(resp.Verdict.Eligible)
		s.Equal("RULE_1", resp.Verdict.MatchedRule)
		s.Contains(resp.Verdict.Text, "Aplica: Sí")
		s.Require().Len(resp.Steps, 1)
		s.Equal("identity_number", resp.Steps[0].Name)
		s.Equal(int64(12), resp.Steps[0].DurationMS)
	})

	s.Run("malformed case id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/cases/not-a-uuid/evaluate"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("provider outage", func() {
		caseID := id.NewCaseID()
		s.service.EXPECT().Evaluate(gomock.Any(), caseID).
			Return(nil, nil, dErrors.New(dErrors.CodeUnavailable, "vital status lookup unavailable"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/cases/"+caseID.String()+"/evaluate"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, string(dErrors.CodeUnavailable))
	})
}

// =============================================================================
// GET / DELETE / LIST
// =============================================================================

func (s *HandlerSuite) TestGet() {
	s.Run("found", func() {
		c := s.newCase()
		s.service.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cases/"+c.ID.String()))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "case_id", c.ID.String())
	})

	s.Run("not found", func() {
		caseID := id.NewCaseID()
		s.service.EXPECT().Get(gomock.Any(), caseID).Return(nil, dErrors.New(dErrors.CodeNotFound, "case not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cases/"+caseID.String()))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *HandlerSuite) TestDelete() {
	caseID := id.NewCaseID()
	s.service.EXPECT().Delete(gomock.Any(), caseID).Return(nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/cases/"+caseID.String()))

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *HandlerSuite) TestList() {
	s.Run("lists cases", func() {
		s.service.EXPECT().List(gomock.Any()).Return([]*cases.Case{s.newCase(), s.newCase()}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cases"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Equal(2, resp.Total)
		s.Len(resp.Cases, 2)
	})

	s.Run("empty list is an empty array", func() {
		s.service.EXPECT().List(gomock.Any()).Return(nil, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/cases"))

		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Body.String(), `"cases":[]`)
	})
}
