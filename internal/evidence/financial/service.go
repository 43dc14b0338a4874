package financial

import (
	"context"
	"errors"

	"polizaexpress/internal/evidence/providers"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

// ProviderID names the financial data store in provider errors and audit sources.
const ProviderID = "financial_store"

// Store is the financial product repository.
type Store interface {
	FindByIdentity(ctx context.Context, identityNumber id.IdentityNumber) (*Record, error)
	Upsert(ctx context.Context, record Record) error
}

// Service translates store results into the provider error taxonomy.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Lookup returns the product of a person. A missing product is a not-found
// provider error; any other store failure is an outage.
func (s *Service) Lookup(ctx context.Context, identityNumber id.IdentityNumber) (*Record, error) {
	record, err := s.store.FindByIdentity(ctx, identityNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, providers.NewProviderError(providers.ErrorNotFound, ProviderID, "no financial product for identity number", err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, providers.FromTransportError(ProviderID, err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, ProviderID, "financial store unavailable", err)
	}
	return record, nil
}

// Import upserts records, stopping at the first failure.
func (s *Service) Import(ctx context.Context, records []Record) error {
	for _, r := range records {
		if _, err := id.ParseIdentityNumber(r.IdentityNumber); err != nil {
			return err
		}
		if err := s.store.Upsert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
