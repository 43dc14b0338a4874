package ports

import (
	"context"
	"time"

	id "polizaexpress/pkg/domain"
)

//go:generate mockgen -source=registry.go -destination=mocks/registry_mock.go -package=mocks

// RegistryPort defines the interface for civil-registry lookups.
// This port allows the decision engine to fetch the vital status
// without depending on HTTP or specific registry implementations.
type RegistryPort interface {
	// LookupVitalStatus retrieves the registry status for an identity number.
	LookupVitalStatus(ctx context.Context, identityNumber id.IdentityNumber) (*VitalRecord, error)
}

// VitalRecord is the registry answer (port model). Status is the raw phrase
// returned by the registry ("Cancelada por Muerte", "Vigente", ...); the
// decision module normalizes it.
type VitalRecord struct {
	IdentityNumber string
	Status         string
	Source         string
	CheckedAt      time.Time
}
