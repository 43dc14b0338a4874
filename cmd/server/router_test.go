package main

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polizaexpress/internal/cases"
	caseshandler "polizaexpress/internal/cases/handler"
	casesstore "polizaexpress/internal/cases/store"
	"polizaexpress/internal/platform/config"
	"polizaexpress/pkg/testutil"
)

// TestDevStack drives the router wired with the development providers and
// in-memory stores, from upload to verdict.
func TestDevStack(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	require.True(t, cfg.DevProviders())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditPublisher := newAuditPublisher(cfg, &infra{}, log)
	defer auditPublisher.Close()
	decisionSvc := newDecisionService(cfg, &infra{}, auditPublisher, log)
	caseSvc := cases.NewService(casesstore.NewInMemoryStore(), decisionSvc, cases.WithAuditor(auditPublisher), cases.WithLogger(log))
	router := newRouter(cfg, log, nil, decisionSvc, caseSvc)

	testutil.Given(t, "the HTTP router", func(t *testing.T) {
		testutil.When(t, "the health endpoint is called", func(t *testing.T) {
			req := testutil.WithRequestID(testutil.NewRequest(t, http.MethodGet, "/health"), "req-health")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it reports ok and echoes the request id", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "status", "ok")
				assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
			})
		})

		testutil.When(t, "an unknown route is called", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/sesiones"))

			testutil.Then(t, "it is not found", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusNotFound)
			})
		})
	})

	testutil.Given(t, "an uploaded case", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewMultipartRequest(t, http.MethodPost, "/cases",
			testutil.UploadFile{Field: cases.FieldIdentityDocument, Filename: "cedula.pdf", Content: []byte("%PDF-1.4 cedula")},
			testutil.UploadFile{Field: cases.FieldDeathCertificate, Filename: "defuncion.pdf", Content: []byte("%PDF-1.4 acta")},
		))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		created := testutil.UnmarshalResponse[caseshandler.CaseResponse](t, rr)

		testutil.When(t, "it is evaluated", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/cases/"+created.CaseID+"/evaluate"))

			testutil.Then(t, "a verdict is recorded for the case", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				resp := testutil.UnmarshalResponse[caseshandler.CaseResponse](t, rr)
				assert.Equal(t, "evaluated", resp.Status)
				require.NotNil(t, resp.Verdict)
				assert.NotEmpty(t, resp.Verdict.Reason)
				assert.Len(t, resp.Steps, 4)

				stored := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/eligibility/verdicts/"+created.CaseID))
				testutil.AssertStatusOK(t, stored)
			})
		})

		testutil.When(t, "it is deleted", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/cases/"+created.CaseID))
			testutil.AssertStatus(t, rr, http.StatusNoContent)

			testutil.Then(t, "it is gone", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/cases/"+created.CaseID))
				testutil.AssertStatus(t, rr, http.StatusNotFound)
			})
		})
	})
}
