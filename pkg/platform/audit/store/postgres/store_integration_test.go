//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/audit/store/postgres"
	"polizaexpress/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) TestListByCaseKeepsEmissionOrder() {
	ctx := context.Background()
	caseID := id.NewCaseID()
	other := id.NewCaseID()
	at := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)

	actions := []audit.AuditEvent{
		audit.EventIdentityExtracted,
		audit.EventVitalStatusChecked,
		audit.EventDeathDateExtracted,
		audit.EventFinancialsRetrieved,
		audit.EventEligibilityDecided,
	}
	for i, action := range actions {
		s.Require().NoError(s.store.Append(ctx, audit.Event{
			CaseID:        caseID,
			Action:        string(action),
			Step:          i + 1,
			Decision:      "ok",
			Source:        "test",
			RequestID:     "req-1",
			SubjectIDHash: "hash",
			Timestamp:     at,
		}))
	}
	s.Require().NoError(s.store.Append(ctx, audit.Event{CaseID: other, Action: string(audit.EventCaseCreated), Timestamp: at}))

	events, err := s.store.ListByCase(ctx, caseID)
	s.Require().NoError(err)
	s.Require().Len(events, len(actions))
	for i, e := range events {
		s.Equal(string(actions[i]), e.Action)
		s.Equal(i+1, e.Step)
		s.Equal(audit.CategoryCompliance, e.Category)
		s.Equal(caseID, e.CaseID)
		s.True(at.Equal(e.Timestamp))
	}
}

func (s *AuditStoreSuite) TestEventWithoutCase() {
	ctx := context.Background()
	err := s.store.Append(ctx, audit.Event{Action: string(audit.EventCaseExpired), Timestamp: time.Now()})
	s.Require().NoError(err)
}
