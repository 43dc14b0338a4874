//go:build integration

package financial_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"polizaexpress/internal/evidence/financial"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *financial.PostgresStore
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
	s.store = financial.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "financial_products"))
}

func (s *PostgresStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()
	record := financial.DevSeed[0]
	s.Require().NoError(s.store.Upsert(ctx, record))

	identity, _ := id.ParseIdentityNumber(record.IdentityNumber)
	found, err := s.store.FindByIdentity(ctx, identity)
	s.Require().NoError(err)
	s.Equal(record, *found)

	record.Balance = "$1.000"
	record.CreditTermEnd = ""
	s.Require().NoError(s.store.Upsert(ctx, record))
	found, err = s.store.FindByIdentity(ctx, identity)
	s.Require().NoError(err)
	s.Equal("$1.000", found.Balance)
	s.Empty(found.CreditTermEnd)
}

func (s *PostgresStoreSuite) TestNotFound() {
	identity, _ := id.ParseIdentityNumber("79000001")
	_, err := s.store.FindByIdentity(context.Background(), identity)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
