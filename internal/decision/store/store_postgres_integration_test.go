//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"polizaexpress/internal/decision"
	"polizaexpress/internal/decision/store"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "verdicts"))
}

func (s *PostgresStoreSuite) record(caseID id.CaseID) decision.VerdictRecord {
	facts, err := decision.Normalize(decision.RawFacts{
		IdentityNumber:     "1032323323",
		VitalStatus:        "fallecido",
		DateOfDeath:        "12 de enero de 2025",
		ProductType:        "CREDIT",
		CreditPlan:         "MOBILE_FIXED_CONSUMPTION",
		Balance:            "$12.500.000",
		DisbursementDate:   "15/03/2024",
		DisbursementAmount: "$30.000.000",
		CreditTermEnd:      "15/03/2029",
	})
	s.Require().NoError(err)
	return decision.VerdictRecord{
		CaseID:        caseID,
		SubjectIDHash: facts.IdentityNumber().Hash(),
		Verdict:       decision.Evaluate(facts),
		EvaluatedAt:   time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC),
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	caseID := id.NewCaseID()
	want := s.record(caseID)

	s.Require().NoError(s.store.Save(ctx, want))

	got, err := s.store.FindByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Equal(want.SubjectIDHash, got.SubjectIDHash)
	s.Equal(want.Verdict.Eligible, got.Verdict.Eligible)
	s.Equal(want.Verdict.MatchedRule, got.Verdict.MatchedRule)
	s.Equal(want.Verdict.Reason, got.Verdict.Reason)
	s.Equal(want.Verdict.Checks, got.Verdict.Checks)
	s.True(want.EvaluatedAt.Equal(got.EvaluatedAt))
}

func (s *PostgresStoreSuite) TestSaveReplacesVerdict() {
	ctx := context.Background()
	caseID := id.NewCaseID()
	first := s.record(caseID)
	s.Require().NoError(s.store.Save(ctx, first))

	second := first
	second.Verdict = decision.Verdict{
		MatchedRule:        decision.RuleNone,
		FailedPrecondition: decision.PreconditionNotDeceased,
		Reason:             "replaced",
	}
	s.Require().NoError(s.store.Save(ctx, second))

	got, err := s.store.FindByCase(ctx, caseID)
	s.Require().NoError(err)
	s.False(got.Verdict.Eligible)
	s.Equal("replaced", got.Verdict.Reason)
}

func (s *PostgresStoreSuite) TestFindMissingCase() {
	_, err := s.store.FindByCase(context.Background(), id.NewCaseID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
